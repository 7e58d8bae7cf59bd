package equiledger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/panjf2000/ants/v2"
)

func (l *Ledger) runJobs() {
	l.scheduler.Every(10).Seconds().SingletonMode().Do(l.updateSnapshot)
	l.scheduler.Every(30).Seconds().SingletonMode().Do(l.updateMetrics)
	l.scheduler.Every(5).Seconds().SingletonMode().Do(l.pollEvents)
	l.scheduler.Every(10).Minutes().SingletonMode().Do(l.sweepEscrowJob)
	l.scheduler.Every(1).Hour().SingletonMode().Do(l.pruneNonces)

	l.scheduler.StartAsync()
}

func (l *Ledger) updateSnapshot() {
	snap, err := l.ActiveSupplySnapshot()
	if err != nil {
		log.Error("l.ActiveSupplySnapshot()", "err", err)
		return
	}
	l.cache.UpdateSnapshot(snap)
}

func (l *Ledger) updateMetrics() {
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		log.Error("l.wdb.GetSupplyState()", "err", err)
		return
	}
	metricSupplyAmount(totalIssued, mustBig(st.TotalIssued))
	metricSupplyAmount(totalBurned, mustBig(st.TotalBurned))
	verifiedAccounts.Set(float64(st.TotalVerifiedAccounts))
	inactiveAccounts.Set(float64(st.InactiveAccounts))
	for _, era := range []string{schema.EraFoundation, schema.EraScarcity, schema.EraEquilibrium} {
		val := 0.0
		if era == st.CurrentEra {
			val = 1.0
		}
		currentEra.WithLabelValues(era).Set(val)
	}
}

// pollEvents drains unpublished ledger events: archive to the KV store,
// publish to kafka when configured, then mark published.
func (l *Ledger) pollEvents() {
	events, err := l.wdb.GetUnpublishedEvents(200)
	if err != nil {
		log.Error("l.wdb.GetUnpublishedEvents(200)", "err", err)
		return
	}
	if len(events) == 0 {
		return
	}

	var wg sync.WaitGroup
	p, _ := ants.NewPoolWithFunc(10, func(i interface{}) {
		defer wg.Done()
		evt := i.(schema.LedgerEvent)
		if err := l.publishEvent(evt); err != nil {
			log.Error("publishEvent", "err", err, "eventId", evt.EventId)
			return
		}
	})
	defer p.Release()

	for _, evt := range events {
		wg.Add(1)
		_ = p.Invoke(evt)
	}
	wg.Wait()
}

func (l *Ledger) publishEvent(evt schema.LedgerEvent) error {
	if err := l.store.SaveEventArchive(evt); err != nil {
		return err
	}

	if kw, ok := l.kwriters[EventTopic]; ok {
		body, err := json.Marshal(kafkaEvent(evt))
		if err != nil {
			return err
		}
		if err = kw.Write(body); err != nil {
			return err
		}
	}
	if evt.Action == schema.EventEraTransition {
		if kw, ok := l.kwriters[EraTopic]; ok {
			body, err := json.Marshal(eraKafkaPayload(evt))
			if err != nil {
				return err
			}
			if err = kw.Write(body); err != nil {
				return err
			}
		}
	}

	if err := l.wdb.SetEventPublished(evt.EventId); err != nil {
		return err
	}
	publishedEvents.Inc()
	return nil
}

func eraKafkaPayload(evt schema.LedgerEvent) schema.KafkaEraTransition {
	extra := struct {
		OldEra   string `json:"oldEra"`
		NewEra   string `json:"newEra"`
		Reason   string `json:"reason"`
		Verified int64  `json:"verified"`
	}{}
	if err := json.Unmarshal(evt.Extra, &extra); err != nil {
		log.Error("json.Unmarshal(evt.Extra,&extra)", "err", err, "eventId", evt.EventId)
	}
	return schema.KafkaEraTransition{
		OldEra:      extra.OldEra,
		NewEra:      extra.NewEra,
		TotalIssued: evt.PostIssued,
		TotalBurned: evt.PostBurned,
		Verified:    extra.Verified,
		ReasonTag:   extra.Reason,
		Timestamp:   evt.CreatedAt.UnixMilli(),
	}
}

func (l *Ledger) sweepEscrowJob() {
	flushed, err := l.SweepExpiredEscrows()
	if err != nil {
		log.Error("l.SweepExpiredEscrows()", "err", err)
		return
	}
	if len(flushed) > 0 {
		log.Info("escrow sweep job", "flushed", flushed)
	}
}

// pruneNonces drops consumed nonces once they are far past the freshness
// window; a pruned nonce can no longer be replayed because its timestamp is
// stale by then.
func (l *Ledger) pruneNonces() {
	nonces, err := l.store.LoadAllNonces()
	if err != nil {
		log.Error("l.store.LoadAllNonces()", "err", err)
		return
	}
	cutoff := time.Now().Add(-24 * time.Hour).Unix()
	for nonce, consumedAt := range nonces {
		if consumedAt >= cutoff {
			continue
		}
		if err := l.store.DeleteNonce(nonce); err != nil {
			log.Error("l.store.DeleteNonce(nonce)", "err", err, "nonce", nonce)
		}
	}
}
