package types

import (
	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
)

// Wallet pairs a derived address with the signer holding its key.
// The key never leaves the signer; formatting a Wallet prints the address only.
type Wallet struct {
	Signer signer.Signer
}

// NewWallet wraps a signer.
func NewWallet(s signer.Signer) *Wallet {
	return &Wallet{Signer: s}
}

// Address returns the wallet's checksummed address.
func (w *Wallet) Address() string {
	return w.Signer.Address().Hex()
}

// String implements fmt.Stringer.
func (w *Wallet) String() string {
	return w.Address()
}
