package errors

import "github.com/pkg/errors"

var (
	ErrChainNotFound         = errors.New("chain not found")
	ErrTokenNotSupported     = errors.New("token not supported on chain")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrInvalidWallet         = errors.New("invalid wallet")
	ErrChainExists           = errors.New("chain already exists in registry")
	ErrFactoryNotProvided    = errors.New("chain factory not provided")
	ErrInvalidChainType      = errors.New("invalid chain type")
	ErrNotImplemented        = errors.New("functionality not implemented")
	ErrDatabaseConnect       = errors.New("failed to connect to database")
	ErrZeroAmount            = errors.New("transfer amount is zero")
	ErrInsufficientNativeFee = errors.New("native balance does not cover bridge fee")
	ErrGateTimeout           = errors.New("source balance did not reach operating threshold")
	ErrApprovalTimeout       = errors.New("allowance did not reflect approval in time")
	ErrSettlementTimeout     = errors.New("destination balance did not settle in time")
)
