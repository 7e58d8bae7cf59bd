package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")
	ErrNotFound = errors.New("not_found")
	ErrExist    = errors.New("s3_bucket_exist")

	// attestation validation
	ErrInvalidAttestation  = errors.New("invalid_attestation")
	ErrStaleAttestation    = errors.New("stale_attestation")
	ErrReplayedAttestation = errors.New("replayed_attestation")
	ErrLowConfidence       = errors.New("low_confidence")

	// balance / transfer
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidAddress      = errors.New("invalid_address")

	// vault locks
	ErrInvalidLockDuration = errors.New("invalid_lock_duration")
	ErrLockNotFound        = errors.New("lock_not_found")
	ErrLockNotLocked       = errors.New("lock_not_in_locked_status")
	ErrLockNotMature       = errors.New("lock_not_mature")

	// liquidity gate
	ErrDailyLimitExceeded = errors.New("daily_limit_exceeded")

	// bridge / escrow
	ErrInvalidJurisdiction    = errors.New("invalid_jurisdiction")
	ErrInsufficientDerivative = errors.New("insufficient_derivative_balance")
	ErrEscrowNotFound         = errors.New("escrow_not_found")
	ErrClockAlreadyStarted    = errors.New("death_clock_already_started")
	ErrEscrowNotInactive      = errors.New("escrow_not_inactive")
	ErrDeathClockExpired      = errors.New("death_clock_expired")
	ErrDeathClockNotExpired   = errors.New("death_clock_not_expired")

	// vitality
	ErrAccountNotFound               = errors.New("account_not_found")
	ErrAccountStillActive            = errors.New("account_still_active")
	ErrAccountAlreadyInactive        = errors.New("account_already_inactive")
	ErrInsufficientBalanceForRemoval = errors.New("insufficient_balance_for_removal")

	ErrNotImplement = errors.New("method not implement")
)
