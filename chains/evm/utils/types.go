package utils

const (
	// ZeroAddress represents the zero address.
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

// IsNative reports whether tokenAddress designates the chain's native currency.
func IsNative(tokenAddress string) bool {
	return tokenAddress == "" || tokenAddress == ZeroAddress
}
