package equiledger

import (
	"math/big"
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/google/uuid"
)

// Lock debits the owner and creates a collateral lock. The duration pair is
// the negotiated settlement window; unlock is legal from minDuration on.
func (l *Ledger) Lock(owner, amount string, minDuration, maxDuration int64) (*schema.RespLock, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkAddress(owner); err != nil {
		return nil, err
	}
	addr := normAddr(owner)
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	params := l.config.GetParams()
	if minDuration < params.MinLockDurationSec || maxDuration > params.MaxLockDurationSec || minDuration > maxDuration {
		return nil, schema.ErrInvalidLockDuration
	}

	acc, err := l.wdb.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	balance := mustBig(acc.Balance)
	if balance.Cmp(amt) < 0 {
		return nil, schema.ErrInsufficientBalance
	}

	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return nil, err
	}

	lock := schema.LockRecord{
		ID:          uuid.NewString(),
		Owner:       addr,
		Amount:      amt.String(),
		MinDuration: minDuration,
		MaxDuration: maxDuration,
		Status:      schema.LockStatusLocked,
	}
	acc.Balance = balance.Sub(balance, amt).String()

	dbTx := l.wdb.Db.Begin()
	if err = l.wdb.SaveAccount(acc, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.wdb.InsertLock(lock, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	evt := newEvent(schema.EventLock, st, st)
	evt.Account = addr
	evt.Amount = amt.String()
	evt = withExtra(evt, map[string]interface{}{"lockId": lock.ID})
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = dbTx.Commit().Error; err != nil {
		return nil, err
	}
	return &schema.RespLock{LockId: lock.ID, EventId: evt.EventId}, nil
}

// Unlock returns a mature lock to its owner. Terminal; the status check runs
// inside the serialized section so a lock settles at most once.
func (l *Ledger) Unlock(lockId string) error {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	lock, err := l.wdb.GetLock(lockId)
	if err != nil {
		return err
	}
	if lock.Status != schema.LockStatusLocked {
		return schema.ErrLockNotLocked
	}
	now := time.Now()
	if now.Sub(lock.CreatedAt) < time.Duration(lock.MinDuration)*time.Second {
		return schema.ErrLockNotMature
	}

	return l.settleLock(lock, lock.Owner, schema.LockStatusUnlocked, schema.EventUnlock, now)
}

// Liquidate seizes a locked amount to the configured default pool.
func (l *Ledger) Liquidate(lockId string) error {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	lock, err := l.wdb.GetLock(lockId)
	if err != nil {
		return err
	}
	if lock.Status != schema.LockStatusLocked {
		return schema.ErrLockNotLocked
	}
	params := l.config.GetParams()

	return l.settleLock(lock, normAddr(params.DefaultPoolAddr), schema.LockStatusLiquidated, schema.EventLiquidate, time.Now())
}

func (l *Ledger) settleLock(lock schema.LockRecord, recipient, status, action string, now time.Time) error {
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return err
	}

	lock.Status = status
	lock.SettledAt = &now

	dbTx := l.wdb.Db.Begin()
	if err = l.creditAccount(recipient, mustBig(lock.Amount), now, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	if err = l.wdb.SaveLock(lock, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	evt := newEvent(action, st, st)
	evt.Account = lock.Owner
	evt.Counterparty = recipient
	evt.Amount = lock.Amount
	evt = withExtra(evt, map[string]interface{}{"lockId": lock.ID})
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	return dbTx.Commit().Error
}

func (l *Ledger) GetLocks(owner string) ([]schema.LockRecord, error) {
	if err := checkAddress(owner); err != nil {
		return nil, err
	}
	return l.wdb.GetLocksByOwner(normAddr(owner))
}

// lockedCollateral sums the owner's open lock amounts; the liquidity gate's
// daily limit is a share of this.
func (l *Ledger) lockedCollateral(owner string) (*big.Int, error) {
	locks, err := l.wdb.GetLockedRecordsByOwner(owner)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, lock := range locks {
		total.Add(total, mustBig(lock.Amount))
	}
	return total, nil
}
