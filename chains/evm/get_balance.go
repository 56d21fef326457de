package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/relay-cycler/chains/evm/generated"
	"github.com/ClipFinance/relay-cycler/chains/evm/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// GetTokenBalance gets token balance for the given address.
// For native token balances, use tokenAddress as empty string or ZeroAddress
//
// Parameters:
// - ctx: the context for managing the request
// - address: the address to check balance for
// - tokenAddress: the token contract address
//
// Returns:
// - *big.Int: the token balance
// - error: an error if the balance check fails
func (e *evm) GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	if utils.IsNative(tokenAddress) {
		balance, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get native token balance")
		}
		return balance, nil
	}

	balance := new(big.Int)
	if err := e.callToken(ctx, tokenAddress, "balanceOf", &balance, common.HexToAddress(address)); err != nil {
		return nil, err
	}
	return balance, nil
}

// Allowance returns how much spender may move from owner's balance of tokenAddress.
func (e *evm) Allowance(ctx context.Context, tokenAddress, owner, spender string) (*big.Int, error) {
	allowance := new(big.Int)
	err := e.callToken(ctx, tokenAddress, "allowance", &allowance, common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, err
	}
	return allowance, nil
}

// Decimals returns the decimals of tokenAddress.
func (e *evm) Decimals(ctx context.Context, tokenAddress string) (uint8, error) {
	var decimals uint8
	if err := e.callToken(ctx, tokenAddress, "decimals", &decimals); err != nil {
		return 0, err
	}
	return decimals, nil
}

// callToken performs a read-only token call and unpacks its single return value into out.
func (e *evm) callToken(ctx context.Context, tokenAddress, method string, out interface{}, args ...interface{}) error {
	tokenAbi, err := generated.ERC20()
	if err != nil {
		return err
	}
	return e.call(ctx, tokenAbi, tokenAddress, method, out, args...)
}

// call packs method, calls contract at the latest block and unpacks the first output into out.
func (e *evm) call(ctx context.Context, contractAbi abi.ABI, contract, method string, out interface{}, args ...interface{}) error {
	client, err := e.getClient()
	if err != nil {
		return err
	}

	data, err := contractAbi.Pack(method, args...)
	if err != nil {
		return errors.Wrapf(err, "failed to pack %s data", method)
	}

	to := common.HexToAddress(contract)
	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to call %s", method)
	}

	if len(result) == 0 {
		return errors.Errorf("empty result from %s call", method)
	}

	values, err := contractAbi.Unpack(method, result)
	if err != nil {
		return errors.Wrapf(err, "failed to unpack %s result", method)
	}
	if len(values) == 0 {
		return errors.Errorf("no values in %s result", method)
	}

	return assign(out, values[0])
}

// assign copies an unpacked ABI value into the typed destination.
func assign(out interface{}, value interface{}) error {
	switch dst := out.(type) {
	case **big.Int:
		v, ok := value.(*big.Int)
		if !ok {
			return errors.Errorf("unexpected value type %T", value)
		}
		*dst = v
	case *uint8:
		v, ok := value.(uint8)
		if !ok {
			return errors.Errorf("unexpected value type %T", value)
		}
		*dst = v
	default:
		return errors.Errorf("unsupported destination type %T", out)
	}
	return nil
}
