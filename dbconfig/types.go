package dbconfig

// HopFilter narrows a journal query.
type HopFilter struct {
	// Status keeps only rows with this status when set.
	Status string
	// Wallet keeps only rows for this address when set.
	Wallet string
	// Limit caps the number of rows, newest first. Zero means DefaultLimit.
	Limit int
}

// DefaultLimit is the row cap used when HopFilter.Limit is zero.
const DefaultLimit = 50
