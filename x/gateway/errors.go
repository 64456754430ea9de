package gateway

import "errors"

var (
	// ErrGatewayPaused is returned while the gateway is administratively
	// disabled; both entry points reject.
	ErrGatewayPaused = errors.New("gateway: paused")

	// ErrReentrantCall is returned when an entry point is re-entered
	// before its value transfers complete.
	ErrReentrantCall = errors.New("gateway: reentrant call")

	// ErrSignatureExpired is returned when the delegated deadline has
	// passed.
	ErrSignatureExpired = errors.New("gateway: signature expired")

	// ErrInvalidSignature is returned for signatures that cannot be
	// recovered.
	ErrInvalidSignature = errors.New("gateway: invalid signature")

	// ErrSignerMismatch is returned when the recovered signer is not the
	// claimed sender.
	ErrSignerMismatch = errors.New("gateway: signer does not match sender")

	// ErrInsufficientFee is returned when the attached value does not
	// cover the enforced-transaction fee.
	ErrInsufficientFee = errors.New("gateway: insufficient fee")

	// ErrFeeTransferFailed wraps a failed fee-vault transfer.
	ErrFeeTransferFailed = errors.New("gateway: fee transfer failed")

	// ErrRefundFailed wraps a failed excess-value refund.
	ErrRefundFailed = errors.New("gateway: refund transfer failed")

	// ErrUnauthorized is returned for non-owner admin calls.
	ErrUnauthorized = errors.New("gateway: caller is not the owner")
)
