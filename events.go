package equiledger

import (
	"encoding/json"

	"github.com/equiledger/equiledger/schema"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// newEvent captures the supply aggregates around a state change so the full
// trajectory can be replayed from the event log alone.
func newEvent(action string, pre, post schema.SupplyState) schema.LedgerEvent {
	return schema.LedgerEvent{
		EventId:    uuid.NewString(),
		Action:     action,
		PreIssued:  pre.TotalIssued,
		PreBurned:  pre.TotalBurned,
		PostIssued: post.TotalIssued,
		PostBurned: post.TotalBurned,
	}
}

func withExtra(evt schema.LedgerEvent, extra map[string]interface{}) schema.LedgerEvent {
	if len(extra) == 0 {
		return evt
	}
	js, err := json.Marshal(extra)
	if err != nil {
		log.Error("json.Marshal(extra)", "err", err, "action", evt.Action)
		return evt
	}
	evt.Extra = datatypes.JSON(js)
	return evt
}

func (l *Ledger) appendEvent(evt schema.LedgerEvent, dbTx *gorm.DB) error {
	return l.wdb.InsertEvent(evt, dbTx)
}

func kafkaEvent(evt schema.LedgerEvent) schema.KafkaLedgerEvent {
	return schema.KafkaLedgerEvent{
		ID:           evt.EventId,
		Action:       evt.Action,
		Account:      evt.Account,
		Counterparty: evt.Counterparty,
		Jurisdiction: evt.Jurisdiction,
		Amount:       evt.Amount,
		PreIssued:    evt.PreIssued,
		PreBurned:    evt.PreBurned,
		PostIssued:   evt.PostIssued,
		PostBurned:   evt.PostBurned,
		Timestamp:    evt.CreatedAt.UnixMilli(),
	}
}
