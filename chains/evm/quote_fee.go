package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/relay-cycler/chains/evm/generated"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ethereum/go-ethereum/common"
)

// lzTxObj is the ABI tuple shape of types.LzTxParams.
type lzTxObj struct {
	DstGasForCall   *big.Int
	DstNativeAmount *big.Int
	DstNativeAddr   []byte
}

func toLzTxObj(p types.LzTxParams) lzTxObj {
	return lzTxObj{
		DstGasForCall:   p.DstGasForCall,
		DstNativeAmount: p.DstNativeAmount,
		DstNativeAddr:   p.DstNativeAddr,
	}
}

// QuoteLayerZeroFee asks this chain's router for the native fee of relaying req.
// Errors from the node are returned wrapped, never retried.
func (e *evm) QuoteLayerZeroFee(ctx context.Context, req *types.SwapRequest) (*big.Int, error) {
	routerAbi, err := generated.Router()
	if err != nil {
		return nil, err
	}

	fee := new(big.Int)
	err = e.call(ctx, routerAbi, e.config.RouterAddress, "quoteLayerZeroFee", &fee,
		req.DstBridgeChainID,
		types.SwapFunctionType,
		common.HexToAddress(req.Recipient).Bytes(),
		payloadOrEmpty(req.Payload),
		toLzTxObj(req.LzTxParams),
	)
	if err != nil {
		return nil, err
	}
	return fee, nil
}

func payloadOrEmpty(p []byte) []byte {
	if p == nil {
		return []byte{}
	}
	return p
}
