package errors

// Global error registry, codes 1-99 are reserved for the engine core.
var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned whenever an event is invalid and cannot be
	// handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned whenever a message is invalid and cannot
	// be used (ie. persisted).
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when there is a record already that has the same
	// unique key/index used
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when application reaches a code path which should not
	// ever be reached if the code was written as expected by the framework
	ErrHuman = Register(7, "coding error")

	// ErrCannotBeModified is returned when something that is considered immutable
	// gets modified
	ErrCannotBeModified = Register(8, "cannot be modified")

	// ErrEmpty is returned when a value fails a not empty assertion
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an object is in invalid state
	ErrState = Register(10, "invalid state")

	// ErrType is returned whenever the type is not what was expected
	ErrType = Register(11, "invalid type")

	// ErrInput stands for general input problems indication
	ErrInput = Register(14, "invalid input")

	// ErrExpired stands for expired entities, normally has to do with block height expirations
	ErrExpired = Register(15, "expired")

	// ErrOverflow s returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase is returned whenever the underlying storage fails.
	ErrDatabase = Register(17, "database")

	// ErrPanic is only set when we recover from a panic, so we know to redact potentially sensitive system info
	ErrPanic = Register(111222, "panic")
)

// Wallet governance errors. Each keeps a stable code a client can switch on.
var (
	ErrInvalidThreshold     = Register(1000, "invalid threshold")
	ErrAlreadyApproved      = Register(1001, "already approved")
	ErrAlreadyRejected      = Register(1002, "already rejected")
	ErrProposalExpired      = Register(1003, "proposal expired")
	ErrNotApproved          = Register(1004, "proposal not approved")
	ErrThresholdUnreachable = Register(1005, "threshold unreachable")
	ErrInvalidExpiration    = Register(1006, "invalid expiration")
	ErrInvalidTimeout       = Register(1007, "invalid timeout")
	ErrInvalidSpendingLimit = Register(1008, "invalid spending limit")
	ErrWalletInactive       = Register(1009, "wallet inactive")
	ErrMemberNotFound       = Register(1010, "member not found")
	ErrNotPending           = Register(1011, "proposal not pending")
)
