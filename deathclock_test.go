package equiledger

import (
	"testing"
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/stretchr/testify/assert"
)

func expireClock(t *testing.T, l *Ledger, code string) {
	err := l.wdb.Db.Model(&schema.JurisdictionEscrow{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"clock_started_at": time.Now().Add(-181 * 24 * time.Hour),
			"clock_expires_at": time.Now().Add(-24 * time.Hour),
		}).Error
	assert.NoError(t, err)
}

func TestClockStartsOnFirstCredit(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")

	_, err := l.IssueLocal("KE", testAlice, "100")
	assert.NoError(t, err)

	esc, err := l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.False(t, esc.ClockStartedAt.IsZero())
	grace := time.Duration(l.config.GetParams().GracePeriodSec) * time.Second
	assert.WithinDuration(t, esc.ClockStartedAt.Add(grace), esc.ClockExpiresAt, time.Second)

	// further credits never re-arm the clock
	started := esc.ClockStartedAt
	_, err = l.IssueLocal("KE", testAlice, "100")
	assert.NoError(t, err)
	esc, err = l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, started.Unix(), esc.ClockStartedAt.Unix())
}

func TestActivateJurisdiction(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "100")
	assert.NoError(t, err)

	assert.NoError(t, l.ActivateJurisdiction("KE"))
	esc, err := l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, schema.EscrowActive, esc.ActivationStatus)

	// terminal both ways
	assert.ErrorIs(t, l.ActivateJurisdiction("KE"), schema.ErrEscrowNotInactive)
	assert.ErrorIs(t, l.FlushEscrow("KE"), schema.ErrEscrowNotInactive)

	// an active jurisdiction keeps bridging after its old expiry passes
	expireClock(t, l, "KE")
	_, err = l.IssueLocal("KE", testAlice, "50")
	assert.NoError(t, err)

	assert.ErrorIs(t, l.ActivateJurisdiction("ZZ"), schema.ErrEscrowNotFound)
}

func TestActivateAfterExpiry(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "100")
	assert.NoError(t, err)

	expireClock(t, l, "KE")
	assert.ErrorIs(t, l.ActivateJurisdiction("KE"), schema.ErrDeathClockExpired)
}

func TestFlushEscrow(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "400")
	assert.NoError(t, err)

	assert.ErrorIs(t, l.FlushEscrow("KE"), schema.ErrDeathClockNotExpired)

	expireClock(t, l, "KE")
	assert.NoError(t, l.FlushEscrow("KE"))

	esc, err := l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, schema.EscrowFlushed, esc.ActivationStatus)
	assert.Equal(t, "0", esc.LockedBalance)

	params := l.config.GetParams()
	pool, err := l.wdb.GetAccount(normAddr(params.DefaultPoolAddr))
	assert.NoError(t, err)
	assert.Equal(t, "400", pool.Balance)

	// exactly once; orphaned derivative can never re-enter
	assert.ErrorIs(t, l.FlushEscrow("KE"), schema.ErrEscrowNotInactive)
	_, err = l.RedeemLocal("KE", testAlice, "100")
	assert.ErrorIs(t, err, schema.ErrDeathClockExpired)
	_, err = l.IssueLocal("KE", testAlice, "100")
	assert.ErrorIs(t, err, schema.ErrDeathClockExpired)
	assertConservation(t, l)
}

// Once the clock has run out the whole locked balance belongs to the flush
// sweep; bridge ops must not drain or grow it in the meantime.
func TestBridgeRejectsExpiredClock(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "400")
	assert.NoError(t, err)

	expireClock(t, l, "KE")

	_, err = l.RedeemLocal("KE", testAlice, "400")
	assert.ErrorIs(t, err, schema.ErrDeathClockExpired)
	_, err = l.IssueLocal("KE", testAlice, "100")
	assert.ErrorIs(t, err, schema.ErrDeathClockExpired)
	_, err = l.CrossTransfer("KE", "NG", testAlice, testBob, "100")
	assert.ErrorIs(t, err, schema.ErrDeathClockExpired)

	// the untouched balance flushes in full
	flushed, err := l.SweepExpiredEscrows()
	assert.NoError(t, err)
	assert.Equal(t, []string{"KE"}, flushed)

	params := l.config.GetParams()
	pool, err := l.wdb.GetAccount(normAddr(params.DefaultPoolAddr))
	assert.NoError(t, err)
	assert.Equal(t, "400", pool.Balance)
	assertConservation(t, l)
}

func TestSweepExpiredEscrows(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	for _, code := range []string{"KE", "NG", "PH"} {
		_, err := l.IssueLocal(code, testAlice, "100")
		assert.NoError(t, err)
	}
	assert.NoError(t, l.ActivateJurisdiction("PH"))
	expireClock(t, l, "KE")
	expireClock(t, l, "NG")
	expireClock(t, l, "PH") // active, must survive the sweep

	flushed, err := l.SweepExpiredEscrows()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"KE", "NG"}, flushed)

	esc, err := l.GetEscrowInfo("PH")
	assert.NoError(t, err)
	assert.Equal(t, schema.EscrowActive, esc.ActivationStatus)
	assert.Equal(t, "100", esc.LockedBalance)

	// second pass finds nothing
	flushed, err = l.SweepExpiredEscrows()
	assert.NoError(t, err)
	assert.Len(t, flushed, 0)
	assertConservation(t, l)
}
