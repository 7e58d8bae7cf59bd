package schema

import (
	"time"
)

const (
	// issuance era
	EraFoundation  = "foundation"
	EraScarcity    = "scarcity"
	EraEquilibrium = "equilibrium"

	// lock record status
	LockStatusLocked     = "locked"
	LockStatusUnlocked   = "unlocked"
	LockStatusLiquidated = "liquidated"

	// jurisdiction escrow activation status
	EscrowInactive = "inactive"
	EscrowActive   = "active"
	EscrowFlushed  = "flushed"

	// sweep underflow policy
	SweepPolicyFail  = "fail"
	SweepPolicyClamp = "clamp"

	BpsDenominator = int64(10000)
)

// Account balances are decimal strings of 10^-18 units; computed with big.Int.
type Account struct {
	Address   string    `gorm:"primarykey" json:"address"` // 0x hex, checksum case
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Balance        string    `json:"balance"`
	Verified       bool      `gorm:"index:idx_acc_verified" json:"verified"`
	Inactive       bool      `gorm:"index:idx_acc_inactive" json:"inactive"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// SupplyState is the singleton aggregate row (ID always 1); only the supply
// ledger and era engine write it, under the core apply lock.
type SupplyState struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`

	TotalIssued           string `json:"totalIssued"`
	TotalBurned           string `json:"totalBurned"`
	TotalVerifiedAccounts int64  `json:"totalVerifiedAccounts"`
	InactiveAccounts      int64  `json:"inactiveAccounts"`
	ReVitalizations       int64  `json:"reVitalizations"`
	InactivityRemovals    int64  `json:"inactivityRemovals"`
	CurrentEra            string `json:"currentEra"`
}

// LockRecord is collateral held against an external settlement obligation.
// Once unlocked or liquidated the record is terminal and kept for audit.
type LockRecord struct {
	ID        string    `gorm:"primarykey" json:"id"` // uuid
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner       string `gorm:"index:idx_lock_owner" json:"owner"`
	Amount      string `json:"amount"`
	MinDuration int64  `json:"minDuration"` // seconds
	MaxDuration int64  `json:"maxDuration"` // seconds

	Status    string     `gorm:"index:idx_lock_status" json:"status"` // "locked","unlocked","liquidated"
	SettledAt *time.Time `json:"settledAt,omitempty"`
}

// JurisdictionEscrow backs a jurisdiction-scoped derivative 1:1 with base
// units. The death clock starts at the first qualifying event and flushes the
// locked balance to the default pool if the jurisdiction never activates.
type JurisdictionEscrow struct {
	Code      string    `gorm:"primarykey" json:"code"` // e.g. "KE", "PH"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	LockedBalance    string `json:"lockedBalance"`
	DerivativeSupply string `json:"derivativeSupply"`

	ClockStartedAt   time.Time `json:"clockStartedAt"`
	ClockExpiresAt   time.Time `json:"clockExpiresAt"`
	ActivationStatus string    `gorm:"index:idx_escrow_status" json:"activationStatus"` // "inactive","active","flushed"
}

// DerivativeBalance is a per-account balance of one jurisdiction's local unit.
type DerivativeBalance struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`

	Jurisdiction string `gorm:"index:idx_deriv,unique" json:"jurisdiction"`
	Owner        string `gorm:"index:idx_deriv,unique" json:"owner"`
	Balance      string `json:"balance"`
}

// DailyWindow tracks the rolling 24h conversion volume per account.
type DailyWindow struct {
	Owner     string    `gorm:"primarykey" json:"owner"`
	UpdatedAt time.Time `json:"updatedAt"`

	VolumeUsed  string    `json:"volumeUsed"`
	WindowStart time.Time `json:"windowStart"`
}

// EraTransition is the immutable record appended on every era change.
type EraTransition struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	OldEra      string `json:"oldEra"`
	NewEra      string `json:"newEra"`
	TotalIssued string `json:"totalIssued"`
	TotalBurned string `json:"totalBurned"`
	Verified    int64  `json:"verified"`
	ReasonTag   string `json:"reasonTag"`
}

// SupplySnapshot is the public read model for /supply.
type SupplySnapshot struct {
	TotalIssued     string `json:"totalIssued"`
	TotalBurned     string `json:"totalBurned"`
	ActiveSupply    string `json:"activeSupply"`
	CurrentEra      string `json:"currentEra"`
	ActiveAccounts  int64  `json:"activeAccounts"`
	InactiveCount   int64  `json:"inactiveAccounts"`
	ReVitalizations int64  `json:"reVitalizations"`
	SupplyPerActive string `json:"supplyPerActive"` // decimal, whole tokens per active account
}

// Allowance is the public read model for the liquidity gate.
type Allowance struct {
	Owner       string    `json:"owner"`
	DailyLimit  string    `json:"dailyLimit"`
	VolumeUsed  string    `json:"volumeUsed"`
	Remaining   string    `json:"remaining"`
	WindowReset time.Time `json:"windowReset"`
	FirstUse    bool      `json:"firstUse"`
}
