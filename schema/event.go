package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ledger event actions
const (
	EventIssuance        = "issuance"
	EventTransfer        = "transfer"
	EventEraTransition   = "era_transition"
	EventLock            = "lock"
	EventUnlock          = "unlock"
	EventLiquidate       = "liquidate"
	EventInactivitySweep = "inactivity_removal"
	EventReVitalization  = "revitalization"
	EventBridgeIssue     = "bridge_issue"
	EventBridgeRedeem    = "bridge_redeem"
	EventCrossTransfer   = "cross_transfer"
	EventClockStart      = "death_clock_start"
	EventEscrowActivated = "escrow_activated"
	EventClockFlush      = "death_clock_flush"
)

// LedgerEvent is the append-only audit record. Pre/post aggregates are
// captured so the full supply trajectory can be replayed from the log alone.
// Seq is the autoincrement paging cursor; EventId the stable external id.
type LedgerEvent struct {
	Seq       uint      `gorm:"primarykey" json:"seq"`
	CreatedAt time.Time `json:"createdAt"`

	EventId string `gorm:"index:idx_event_uuid,unique" json:"id"` // uuid

	Action       string `gorm:"index:idx_event_action" json:"action"`
	Account      string `gorm:"index:idx_event_account" json:"account,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Amount       string `json:"amount,omitempty"`

	PreIssued  string `json:"preIssued"`
	PreBurned  string `json:"preBurned"`
	PostIssued string `json:"postIssued"`
	PostBurned string `json:"postBurned"`

	Extra datatypes.JSON `json:"extra,omitempty"`

	Published bool `gorm:"index:idx_event_published" json:"-"`
}
