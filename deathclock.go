package equiledger

import (
	"time"

	"github.com/equiledger/equiledger/schema"
	"gorm.io/gorm"
)

// startClock arms a jurisdiction's death clock; called exactly once, at the
// first qualifying credit. Mutates esc; the caller saves it in the same tx.
func (l *Ledger) startClock(esc *schema.JurisdictionEscrow, now time.Time, dbTx *gorm.DB) error {
	if !esc.ClockStartedAt.IsZero() {
		return schema.ErrClockAlreadyStarted
	}
	params := l.config.GetParams()
	esc.ClockStartedAt = now
	esc.ClockExpiresAt = now.Add(time.Duration(params.GracePeriodSec) * time.Second)

	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return err
	}
	evt := newEvent(schema.EventClockStart, st, st)
	evt.Jurisdiction = esc.Code
	evt = withExtra(evt, map[string]interface{}{"expiresAt": esc.ClockExpiresAt.Unix()})
	return l.appendEvent(evt, dbTx)
}

// ActivateJurisdiction marks a jurisdiction as formally recognized before its
// clock runs out; terminal, the escrow can never be flushed afterwards.
func (l *Ledger) ActivateJurisdiction(jurisdiction string) error {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkJurisdiction(jurisdiction); err != nil {
		return err
	}
	esc, err := l.wdb.GetEscrow(jurisdiction)
	if err != nil {
		return err
	}
	if esc.ActivationStatus != schema.EscrowInactive {
		return schema.ErrEscrowNotInactive
	}
	now := time.Now()
	if !esc.ClockStartedAt.IsZero() && !now.Before(esc.ClockExpiresAt) {
		return schema.ErrDeathClockExpired
	}
	esc.ActivationStatus = schema.EscrowActive

	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return err
	}
	dbTx := l.wdb.Db.Begin()
	if err = l.wdb.SaveEscrow(esc, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	evt := newEvent(schema.EventEscrowActivated, st, st)
	evt.Jurisdiction = jurisdiction
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	return dbTx.Commit().Error
}

// FlushEscrow settles one expired jurisdiction to the default pool.
func (l *Ledger) FlushEscrow(jurisdiction string) error {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkJurisdiction(jurisdiction); err != nil {
		return err
	}
	esc, err := l.wdb.GetEscrow(jurisdiction)
	if err != nil {
		return err
	}
	return l.flushEscrow(esc, time.Now())
}

// SweepExpiredEscrows flushes every jurisdiction whose clock has run out.
// Public-good operation: anyone may trigger it, the outcome is identical.
func (l *Ledger) SweepExpiredEscrows() ([]string, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	now := time.Now()
	expired, err := l.wdb.GetExpiredEscrows(now)
	if err != nil {
		return nil, err
	}
	flushed := make([]string, 0, len(expired))
	for _, esc := range expired {
		if err := l.flushEscrow(esc, now); err != nil {
			log.Error("l.flushEscrow(esc,now)", "err", err, "jurisdiction", esc.Code)
			continue
		}
		flushed = append(flushed, esc.Code)
	}
	return flushed, nil
}

// flushEscrow runs under applyLocker. The status check inside the serialized
// section makes the flush exactly-once.
func (l *Ledger) flushEscrow(esc schema.JurisdictionEscrow, now time.Time) error {
	if esc.ActivationStatus != schema.EscrowInactive {
		return schema.ErrEscrowNotInactive
	}
	if esc.ClockStartedAt.IsZero() || now.Before(esc.ClockExpiresAt) {
		return schema.ErrDeathClockNotExpired
	}
	params := l.config.GetParams()
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return err
	}

	residual := mustBig(esc.LockedBalance)
	orphaned := esc.DerivativeSupply
	esc.LockedBalance = "0"
	esc.ActivationStatus = schema.EscrowFlushed

	dbTx := l.wdb.Db.Begin()
	if err = l.creditAccount(normAddr(params.DefaultPoolAddr), residual, now, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	if err = l.wdb.SaveEscrow(esc, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	evt := newEvent(schema.EventClockFlush, st, st)
	evt.Jurisdiction = esc.Code
	evt.Amount = residual.String()
	evt = withExtra(evt, map[string]interface{}{"orphanedDerivative": orphaned})
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	if err = dbTx.Commit().Error; err != nil {
		return err
	}
	log.Info("escrow flushed", "jurisdiction", esc.Code, "amount", residual.String(), "orphanedDerivative", orphaned)
	return nil
}
