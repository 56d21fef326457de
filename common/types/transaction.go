package types

import (
	"math/big"
)

// SwapFunctionType is the router message type for a plain pool swap.
const SwapFunctionType uint8 = 1

// Transaction represents a submitted blockchain transaction.
//
// Fields:
// - Hash: the hash of the transaction.
// - From: the address from which the transaction is sent.
// - To: the contract or account the transaction calls.
// - Value: the native value attached.
// - Nonce: the nonce of the transaction.
// - Chain: the name of the chain where the transaction was submitted.
// - URL: the block explorer link.
type Transaction struct {
	Hash  string
	From  string
	To    string
	Value *big.Int
	Nonce uint64
	Chain string
	URL   string
}

// LzTxParams mirrors the router's lzTxObj tuple.
type LzTxParams struct {
	DstGasForCall   *big.Int
	DstNativeAmount *big.Int
	DstNativeAddr   []byte
}

// DefaultLzTxParams returns the parameters for a transfer without destination gas drop.
func DefaultLzTxParams() LzTxParams {
	addr := make([]byte, 20)
	addr[19] = 1
	return LzTxParams{
		DstGasForCall:   big.NewInt(0),
		DstNativeAmount: big.NewInt(0),
		DstNativeAddr:   addr,
	}
}

// SwapRequest carries everything the router needs for one bridge transfer.
type SwapRequest struct {
	DstBridgeChainID uint16
	SrcPoolID        uint64
	DstPoolID        uint64
	RefundAddress    string
	Recipient        string
	AmountIn         *big.Int
	MinAmountOut     *big.Int
	LzTxParams       LzTxParams
	Payload          []byte
}
