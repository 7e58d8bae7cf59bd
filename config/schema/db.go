package schema

// LedgerParams is the single-row runtime parameter table. Amounts are decimal
// strings of 10^-18 units, shares are basis points out of 10000.
type LedgerParams struct {
	ID uint `gorm:"primarykey"`

	// era policy
	UnitPerCitizen      string `json:"unitPerCitizen"`
	SupplyThreshold     string `json:"supplyThreshold"` // foundation -> scarcity trigger
	ToleranceBps        int64  `json:"toleranceBps"`    // scarcity -> equilibrium band
	FoundationIssuance  string `json:"foundationIssuance"`
	ScarcityIssuance    string `json:"scarcityIssuance"`
	EquilibriumIssuance string `json:"equilibriumIssuance"`
	AccountShareBps     int64  `json:"accountShareBps"` // attested account share of issuance

	// scarcity transfer policy
	BurnRateBps    int64  `json:"burnRateBps"`
	CommunityBps   int64  `json:"communityBps"`
	EscrowBps      int64  `json:"escrowBps"`
	MaintenanceBps int64  `json:"maintenanceBps"`
	EscrowSplitJur string `json:"escrowSplitJur"` // jurisdiction receiving the escrow split

	// attestation policy
	VerifierAddr       string `json:"verifierAddr"` // 0x hex address of the presence verifier
	FreshnessWindowSec int64  `json:"freshnessWindowSec"`
	ClockSkewSec       int64  `json:"clockSkewSec"`
	MinConfidence      int    `json:"minConfidence"`

	// vault policy
	MinLockDurationSec int64 `json:"minLockDurationSec"`
	MaxLockDurationSec int64 `json:"maxLockDurationSec"`

	// liquidity gate
	DailyLimitBps int64 `json:"dailyLimitBps"`

	// escrow death clock
	GracePeriodSec int64 `json:"gracePeriodSec"`

	// vitality
	InactivityThresholdSec int64  `json:"inactivityThresholdSec"`
	SweepUnderflowPolicy   string `json:"sweepUnderflowPolicy"` // "fail" or "clamp"

	// system accounts
	CommunityPoolAddr string `json:"communityPoolAddr"`
	MaintenanceAddr   string `json:"maintenanceAddr"`
	DefaultPoolAddr   string `json:"defaultPoolAddr"`
}

// AdminApiKey gates privileged operations (unlock, liquidate, sweep, activate).
type AdminApiKey struct {
	ApiKey      string `gorm:"primarykey"`
	Available   bool   `gorm:"index:idx_admin_key"` // true means effective
	Description string
}

type IpRateWhitelist struct {
	OriginOrIP  string `gorm:"primarykey"` // e.g "188.0.2.2"
	Available   bool   `gorm:"index:idx_ip_wl"` // true means effective
	Description string
}
