package schema

// KafkaLedgerEvent is the wire form pushed to the event topic; a flat copy of
// LedgerEvent so downstream consumers do not depend on gorm types.
type KafkaLedgerEvent struct {
	ID           string `json:"id"`
	Action       string `json:"action"`
	Account      string `json:"account,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Amount       string `json:"amount,omitempty"`
	PreIssued    string `json:"preIssued"`
	PreBurned    string `json:"preBurned"`
	PostIssued   string `json:"postIssued"`
	PostBurned   string `json:"postBurned"`
	Timestamp    int64  `json:"timestamp"` // unix ms
}

// KafkaEraTransition mirrors EraTransition for the era topic.
type KafkaEraTransition struct {
	OldEra      string `json:"oldEra"`
	NewEra      string `json:"newEra"`
	TotalIssued string `json:"totalIssued"`
	TotalBurned string `json:"totalBurned"`
	Verified    int64  `json:"verified"`
	ReasonTag   string `json:"reasonTag"`
	Timestamp   int64  `json:"timestamp"` // unix ms
}
