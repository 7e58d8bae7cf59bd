package equiledger

import (
	"testing"
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/stretchr/testify/assert"
)

const (
	day       = int64(24 * 3600)
	sevenDays = 7 * day
)

func backdateLock(t *testing.T, l *Ledger, lockId string, age time.Duration) {
	err := l.wdb.Db.Model(&schema.LockRecord{}).
		Where("id = ?", lockId).
		Update("created_at", time.Now().Add(-age)).Error
	assert.NoError(t, err)
}

func TestLockValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")

	_, err := l.Lock(testAlice, "600", day, 30*day) // min below floor
	assert.ErrorIs(t, err, schema.ErrInvalidLockDuration)
	_, err = l.Lock(testAlice, "600", sevenDays, 1000*day) // max above cap
	assert.ErrorIs(t, err, schema.ErrInvalidLockDuration)
	_, err = l.Lock(testAlice, "600", 30*day, sevenDays) // inverted pair
	assert.ErrorIs(t, err, schema.ErrInvalidLockDuration)

	_, err = l.Lock(testAlice, "0", sevenDays, 30*day)
	assert.ErrorIs(t, err, schema.ErrInvalidAmount)
	_, err = l.Lock(testAlice, "2000", sevenDays, 30*day)
	assert.ErrorIs(t, err, schema.ErrInsufficientBalance)
	_, err = l.Lock(testBob, "600", sevenDays, 30*day)
	assert.ErrorIs(t, err, schema.ErrAccountNotFound)
}

func TestLockUnlock(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")

	resp, err := l.Lock(testAlice, "600", sevenDays, 30*day)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.LockId)

	acc, err := l.GetAccountInfo(testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "400", acc.Balance)

	locks, err := l.GetLocks(testAlice)
	assert.NoError(t, err)
	assert.Len(t, locks, 1)
	assert.Equal(t, schema.LockStatusLocked, locks[0].Status)
	assertConservation(t, l)

	// not mature yet
	assert.ErrorIs(t, l.Unlock(resp.LockId), schema.ErrLockNotMature)

	backdateLock(t, l, resp.LockId, 8*24*time.Hour)
	assert.NoError(t, l.Unlock(resp.LockId))

	acc, err = l.GetAccountInfo(testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "1000", acc.Balance)

	lock, err := l.wdb.GetLock(resp.LockId)
	assert.NoError(t, err)
	assert.Equal(t, schema.LockStatusUnlocked, lock.Status)
	assert.NotNil(t, lock.SettledAt)

	// terminal: no double settle
	assert.ErrorIs(t, l.Unlock(resp.LockId), schema.ErrLockNotLocked)
	assert.ErrorIs(t, l.Liquidate(resp.LockId), schema.ErrLockNotLocked)
	assertConservation(t, l)
}

func TestLiquidate(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")

	resp, err := l.Lock(testAlice, "600", sevenDays, 30*day)
	assert.NoError(t, err)

	// liquidation has no maturity requirement
	assert.NoError(t, l.Liquidate(resp.LockId))

	params := l.config.GetParams()
	pool, err := l.wdb.GetAccount(normAddr(params.DefaultPoolAddr))
	assert.NoError(t, err)
	assert.Equal(t, "600", pool.Balance)

	lock, err := l.wdb.GetLock(resp.LockId)
	assert.NoError(t, err)
	assert.Equal(t, schema.LockStatusLiquidated, lock.Status)

	assert.ErrorIs(t, l.Unlock(resp.LockId), schema.ErrLockNotLocked)
	assertConservation(t, l)
}

func TestUnlockUnknownLock(t *testing.T) {
	l, _ := newTestLedger(t)
	assert.ErrorIs(t, l.Unlock("no-such-lock"), schema.ErrLockNotFound)
	assert.ErrorIs(t, l.Liquidate("no-such-lock"), schema.ErrLockNotFound)
}
