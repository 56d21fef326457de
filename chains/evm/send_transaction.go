package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/relay-cycler/chains/evm/generated"
	"github.com/ClipFinance/relay-cycler/chains/evm/signer"
	"github.com/ClipFinance/relay-cycler/common/types"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Approve submits approve(spender, amount) on tokenAddress signed by s.
//
// Parameters:
// - ctx: the context for managing the request.
// - s: the wallet signer.
// - tokenAddress: the token contract.
// - spender: the address being authorized.
// - amount: the allowance to grant.
//
// Returns:
// - *types.Transaction: the submitted transaction.
// - error: an error if packing, gas estimation, signing or sending fails.
func (e *evm) Approve(ctx context.Context, s signer.Signer, tokenAddress, spender string, amount *big.Int) (*types.Transaction, error) {
	tokenAbi, err := generated.ERC20()
	if err != nil {
		return nil, err
	}

	data, err := tokenAbi.Pack("approve", common.HexToAddress(spender), amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack approve data")
	}

	return e.send(ctx, s, common.HexToAddress(tokenAddress), big.NewInt(0), data)
}

// Swap submits a router swap for req signed by s, attaching fee as value.
// It does not wait for the receipt; the effect is observed on the destination chain.
//
// Parameters:
// - ctx: the context for managing the request.
// - s: the wallet signer.
// - req: the swap parameters.
// - fee: the native fee quoted by the router.
//
// Returns:
// - *types.Transaction: the submitted transaction.
// - error: an error if packing, gas estimation, signing or sending fails.
func (e *evm) Swap(ctx context.Context, s signer.Signer, req *types.SwapRequest, fee *big.Int) (*types.Transaction, error) {
	routerAbi, err := generated.Router()
	if err != nil {
		return nil, err
	}

	data, err := routerAbi.Pack("swap",
		req.DstBridgeChainID,
		new(big.Int).SetUint64(req.SrcPoolID),
		new(big.Int).SetUint64(req.DstPoolID),
		common.HexToAddress(req.RefundAddress),
		req.AmountIn,
		req.MinAmountOut,
		toLzTxObj(req.LzTxParams),
		common.HexToAddress(req.Recipient).Bytes(),
		payloadOrEmpty(req.Payload),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack swap data")
	}

	return e.send(ctx, s, common.HexToAddress(e.config.RouterAddress), fee, data)
}

// send prepares, signs and submits a contract call from the signer's address.
func (e *evm) send(ctx context.Context, s signer.Signer, to common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	from := s.Address()
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get nonce")
	}

	tx, err := e.prepareTransaction(ctx, from, nonce, to, value, data)
	if err != nil {
		return nil, err
	}

	signedTx, err := e.signAndSendTransaction(ctx, s, tx)
	if err != nil {
		return nil, err
	}

	hash := signedTx.Hash().Hex()
	return &types.Transaction{
		Hash:  hash,
		From:  from.Hex(),
		To:    to.Hex(),
		Value: value,
		Nonce: nonce,
		Chain: e.config.Name,
		URL:   e.config.TxURL(hash),
	}, nil
}

// prepareTransaction prepares a transaction with the given parameters.
//
// Parameters:
// - ctx: the context for managing the request.
// - from: the sender used for gas estimation.
// - nonce: the nonce for the transaction.
// - to: the recipient address of the transaction.
// - value: the amount of native currency to send with the transaction.
// - data: the input data for the transaction.
//
// Returns:
// - *ethtypes.Transaction: the prepared transaction.
// - error: an error if the gas estimation, gas price retrieval, or client initialization fails.
func (e *evm) prepareTransaction(ctx context.Context, from common.Address, nonce uint64, to common.Address, value *big.Int, data []byte) (*ethtypes.Transaction, error) {
	estimatedGas, err := e.EstimateGas(ctx, from, to, value, data)
	if err != nil {
		e.log().WithError(err).Warn("Failed to estimate gas")
		return nil, errors.Wrap(err, "failed to estimate gas")
	}

	gasLimit := e.gasLimit(estimatedGas)

	if e.config.TxType == TxTypeEIP1559 {
		gasPriceData, err := e.getEIP1559GasPrice(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get EIP-1559 gas price")
		}

		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   new(big.Int).SetUint64(e.config.ChainID),
			Nonce:     nonce,
			GasFeeCap: gasPriceData.MaxFeePerGas,
			GasTipCap: gasPriceData.MaxPriorityFeePerGas,
			Gas:       gasLimit,
			To:        &to,
			Value:     value,
			Data:      data,
		}), nil
	}

	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}

	return ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	}), nil
}

// signAndSendTransaction signs and sends the prepared transaction.
func (e *evm) signAndSendTransaction(ctx context.Context, s signer.Signer, tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	chainID := new(big.Int).SetUint64(e.config.ChainID)

	signedTx, err := s.SignTx(tx, chainID)
	if err != nil {
		e.log().WithError(err).Error("Failed to sign transaction")
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err = client.SendTransaction(ctx, signedTx); err != nil {
		e.log().WithFields(logrus.Fields{
			"from":  s.Address().Hex(),
			"nonce": signedTx.Nonce(),
		}).WithError(err).Error("Failed to send transaction")
		return nil, errors.Wrap(err, "failed to send transaction")
	}

	return signedTx, nil
}
