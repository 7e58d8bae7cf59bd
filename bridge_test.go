package equiledger

import (
	"testing"

	"github.com/equiledger/equiledger/schema"
	"github.com/stretchr/testify/assert"
)

func TestBridgeRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")

	resp, err := l.IssueLocal("KE", testAlice, "400")
	assert.NoError(t, err)
	assert.Equal(t, "KE", resp.Jurisdiction)

	acc, err := l.GetAccountInfo(testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "600", acc.Balance)

	esc, err := l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, "400", esc.LockedBalance)
	assert.Equal(t, "400", esc.DerivativeSupply)
	assert.False(t, esc.ClockStartedAt.IsZero())

	deriv, err := l.GetDerivativeBalance("KE", testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "400", deriv.Balance)
	assertConservation(t, l)

	// redeem releases base units 1:1
	_, err = l.RedeemLocal("KE", testAlice, "150")
	assert.NoError(t, err)

	acc, err = l.GetAccountInfo(testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "750", acc.Balance)

	esc, err = l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, "250", esc.LockedBalance)
	assert.Equal(t, "250", esc.DerivativeSupply)

	deriv, err = l.GetDerivativeBalance("KE", testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "250", deriv.Balance)
	assertConservation(t, l)
}

func TestRedeemInsufficientDerivative(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "400")
	assert.NoError(t, err)

	_, err = l.RedeemLocal("KE", testAlice, "500")
	assert.ErrorIs(t, err, schema.ErrInsufficientDerivative)

	// no derivative row at all
	_, err = l.RedeemLocal("KE", testBob, "1")
	assert.ErrorIs(t, err, schema.ErrInsufficientDerivative)

	_, err = l.RedeemLocal("NG", testAlice, "1")
	assert.ErrorIs(t, err, schema.ErrEscrowNotFound)
}

func TestBridgeValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")

	_, err := l.IssueLocal("ke", testAlice, "100")
	assert.ErrorIs(t, err, schema.ErrInvalidJurisdiction)
	_, err = l.IssueLocal("K", testAlice, "100")
	assert.ErrorIs(t, err, schema.ErrInvalidJurisdiction)
	_, err = l.IssueLocal("TOOLONGCODE", testAlice, "100")
	assert.ErrorIs(t, err, schema.ErrInvalidJurisdiction)

	_, err = l.IssueLocal("KE", testAlice, "0")
	assert.ErrorIs(t, err, schema.ErrInvalidAmount)
	_, err = l.IssueLocal("KE", testAlice, "2000")
	assert.ErrorIs(t, err, schema.ErrInsufficientBalance)

	_, err = l.CrossTransfer("KE", "KE", testAlice, testBob, "100")
	assert.ErrorIs(t, err, schema.ErrInvalidJurisdiction)
}

func TestCrossTransfer(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "400")
	assert.NoError(t, err)

	resp, err := l.CrossTransfer("KE", "NG", testAlice, testBob, "150")
	assert.NoError(t, err)
	assert.Equal(t, "NG", resp.Jurisdiction)

	derivKE, err := l.GetDerivativeBalance("KE", testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "250", derivKE.Balance)
	derivNG, err := l.GetDerivativeBalance("NG", testBob)
	assert.NoError(t, err)
	assert.Equal(t, "150", derivNG.Balance)

	escKE, err := l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, "250", escKE.LockedBalance)
	escNG, err := l.GetEscrowInfo("NG")
	assert.NoError(t, err)
	assert.Equal(t, "150", escNG.LockedBalance)
	assert.False(t, escNG.ClockStartedAt.IsZero())

	// base balance untouched by a derivative-to-derivative settlement
	acc, err := l.GetAccountInfo(testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "600", acc.Balance)
	assertConservation(t, l)
}

// The issue leg of a cross-transfer is a conversion for the recipient and
// consumes the recipient's daily allowance like a direct local issue.
func TestCrossTransferDailyLimit(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "200000")
	fundAccount(t, l, testBob, "100000")
	_, err := l.Lock(testBob, "100000", sevenDays, 30*day)
	assert.NoError(t, err)

	// alice converts ungated (nothing locked), then pays bob cross-border
	_, err = l.IssueLocal("KE", testAlice, "20000")
	assert.NoError(t, err)

	// bob's limit: 10% of 100000 locked
	_, err = l.CrossTransfer("KE", "NG", testAlice, testBob, "11000")
	assert.ErrorIs(t, err, schema.ErrDailyLimitExceeded)

	// the rejected settlement left both legs untouched
	derivKE, err := l.GetDerivativeBalance("KE", testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "20000", derivKE.Balance)
	derivNG, err := l.GetDerivativeBalance("NG", testBob)
	assert.NoError(t, err)
	assert.Equal(t, "0", derivNG.Balance)

	_, err = l.CrossTransfer("KE", "NG", testAlice, testBob, "8000")
	assert.NoError(t, err)
	derivNG, err = l.GetDerivativeBalance("NG", testBob)
	assert.NoError(t, err)
	assert.Equal(t, "8000", derivNG.Balance)

	allow, err := l.Allowance(testBob)
	assert.NoError(t, err)
	assert.Equal(t, "8000", allow.VolumeUsed)
	assert.Equal(t, "2000", allow.Remaining)
	assertConservation(t, l)
}

func TestCrossTransferAtomic(t *testing.T) {
	l, _ := newTestLedger(t)
	fundAccount(t, l, testAlice, "1000")
	_, err := l.IssueLocal("KE", testAlice, "400")
	assert.NoError(t, err)

	// receiving side already flushed: both legs must roll back
	flushed := schema.JurisdictionEscrow{
		Code:             "PH",
		LockedBalance:    "0",
		DerivativeSupply: "0",
		ActivationStatus: schema.EscrowFlushed,
	}
	assert.NoError(t, l.wdb.SaveEscrow(flushed, nil))

	_, err = l.CrossTransfer("KE", "PH", testAlice, testBob, "100")
	assert.ErrorIs(t, err, schema.ErrDeathClockExpired)

	derivKE, err := l.GetDerivativeBalance("KE", testAlice)
	assert.NoError(t, err)
	assert.Equal(t, "400", derivKE.Balance)
	escKE, err := l.GetEscrowInfo("KE")
	assert.NoError(t, err)
	assert.Equal(t, "400", escKE.LockedBalance)
	assert.Equal(t, "400", escKE.DerivativeSupply)
	assertConservation(t, l)
}
