package queue

import "errors"

var (
	// ErrCallerNotMessenger guards the cross-domain append capability.
	ErrCallerNotMessenger = errors.New("queue: caller is not the messenger")

	// ErrCallerNotGateway guards the enforced-transaction append capability.
	ErrCallerNotGateway = errors.New("queue: caller is not the enforced tx gateway")

	// ErrCallerNotRollup guards the finalize capability.
	ErrCallerNotRollup = errors.New("queue: caller is not the rollup chain")

	// ErrGasLimitExceeded is returned when a message's gas limit is above
	// the configured cap.
	ErrGasLimitExceeded = errors.New("queue: gas limit exceeds maximum")

	// ErrGasLimitBelowIntrinsic is returned when a message's gas limit
	// cannot even cover its intrinsic cost.
	ErrGasLimitBelowIntrinsic = errors.New("queue: gas limit below intrinsic gas")

	// ErrFinalizedIndexTooSmall is returned when finalization would move
	// the cursor backwards.
	ErrFinalizedIndexTooSmall = errors.New("queue: finalized index too small")

	// ErrFinalizedIndexTooLarge is returned when finalization would run
	// past the end of the queue.
	ErrFinalizedIndexTooLarge = errors.New("queue: finalized index too large")

	// ErrUnknownQueueIndex is returned for reads of never-assigned indices.
	ErrUnknownQueueIndex = errors.New("queue: unknown queue index")
)
