package types

// HopStatus is the terminal state of one hop attempt.
type HopStatus string

const (
	// HopDone is the status of a hop whose transfer settled on the destination.
	HopDone HopStatus = "DONE"
	// HopFailed is the status of a hop abandoned after an error.
	HopFailed HopStatus = "FAILED"
	// HopCancelled is the status of a hop interrupted by shutdown.
	HopCancelled HopStatus = "CANCELLED"
)

// FailureKind classifies why a hop failed.
type FailureKind string

const (
	// GateTimeout indicates the source balance never reached the operating threshold.
	GateTimeout FailureKind = "GATE_TIMEOUT"

	// ApprovalFailed indicates the approval transaction could not be submitted.
	ApprovalFailed FailureKind = "APPROVAL_FAILED"

	// ApprovalTimeout indicates the approval was submitted but the allowance never reflected it.
	ApprovalTimeout FailureKind = "APPROVAL_TIMEOUT"

	// ZeroAmount indicates there was nothing to send.
	ZeroAmount FailureKind = "ZERO_AMOUNT"

	// InsufficientFunds indicates the wallet cannot pay the bridge fee or gas.
	InsufficientFunds FailureKind = "INSUFFICIENT_FUNDS"

	// Reverted indicates a contract call reverted.
	Reverted FailureKind = "REVERTED"

	// RPCError indicates a transport or node failure.
	RPCError FailureKind = "RPC_ERROR"

	// SettlementTimeout indicates the destination balance never settled.
	SettlementTimeout FailureKind = "SETTLEMENT_TIMEOUT"

	// ConfigError indicates the hop references a chain or token that is not configured.
	ConfigError FailureKind = "CONFIG_ERROR"

	// Cancelled indicates the run was stopped.
	Cancelled FailureKind = "CANCELLED"
)
