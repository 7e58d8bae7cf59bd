package equiledger

import (
	"math/big"
	"regexp"
	"time"

	"github.com/equiledger/equiledger/schema"
	"gorm.io/gorm"
)

var jurCodeRe = regexp.MustCompile(`^[A-Z]{2,8}$`)

func checkJurisdiction(code string) error {
	if !jurCodeRe.MatchString(code) {
		return schema.ErrInvalidJurisdiction
	}
	return nil
}

// IssueLocal converts base units into a jurisdiction's derivative: the base
// amount moves into the jurisdiction escrow and the owner is minted 1:1
// local units. Runs through the daily liquidity gate. The first qualifying
// credit of a jurisdiction starts its death clock.
func (l *Ledger) IssueLocal(jurisdiction, owner, amount string) (*schema.RespBridge, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkJurisdiction(jurisdiction); err != nil {
		return nil, err
	}
	if err := checkAddress(owner); err != nil {
		return nil, err
	}
	addr := normAddr(owner)
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	now := time.Now()

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

	dbTx := l.wdb.Db.Begin()
	if err = l.checkAndRecordConversion(addr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	acc.Balance = balance.Sub(balance, amt).String()
	if err = l.wdb.SaveAccount(acc, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.escrowIssue(jurisdiction, addr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	evt := newEvent(schema.EventBridgeIssue, st, st)
	evt.Account = addr
	evt.Jurisdiction = jurisdiction
	evt.Amount = amt.String()
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = dbTx.Commit().Error; err != nil {
		return nil, err
	}
	return &schema.RespBridge{Jurisdiction: jurisdiction, Owner: addr, Amount: amt.String(), EventId: evt.EventId}, nil
}

// RedeemLocal burns the owner's derivative and releases escrowed base units
// back to them.
func (l *Ledger) RedeemLocal(jurisdiction, owner, amount string) (*schema.RespBridge, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkJurisdiction(jurisdiction); err != nil {
		return nil, err
	}
	if err := checkAddress(owner); err != nil {
		return nil, err
	}
	addr := normAddr(owner)
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return nil, err
	}

	dbTx := l.wdb.Db.Begin()
	if err = l.escrowRedeem(jurisdiction, addr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.creditAccount(addr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	evt := newEvent(schema.EventBridgeRedeem, st, st)
	evt.Account = addr
	evt.Jurisdiction = jurisdiction
	evt.Amount = amt.String()
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = dbTx.Commit().Error; err != nil {
		return nil, err
	}
	return &schema.RespBridge{Jurisdiction: jurisdiction, Owner: addr, Amount: amt.String(), EventId: evt.EventId}, nil
}

// CrossTransfer settles a derivative payment across jurisdictions: a redeem
// leg for the caller and an issue leg for the recipient in one transaction.
// Any failed precondition rolls back both legs.
func (l *Ledger) CrossTransfer(fromJur, toJur, from, to, amount string) (*schema.RespBridge, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkJurisdiction(fromJur); err != nil {
		return nil, err
	}
	if err := checkJurisdiction(toJur); err != nil {
		return nil, err
	}
	if fromJur == toJur {
		return nil, schema.ErrInvalidJurisdiction
	}
	if err := checkAddress(from); err != nil {
		return nil, err
	}
	if err := checkAddress(to); err != nil {
		return nil, err
	}
	fromAddr, toAddr := normAddr(from), normAddr(to)
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return nil, err
	}

	dbTx := l.wdb.Db.Begin()
	// the issue leg is a conversion for the recipient, so it passes through
	// the same daily gate as a direct local issue
	if err = l.checkAndRecordConversion(toAddr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.escrowRedeem(fromJur, fromAddr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.escrowIssue(toJur, toAddr, amt, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	evt := newEvent(schema.EventCrossTransfer, st, st)
	evt.Account = fromAddr
	evt.Counterparty = toAddr
	evt.Jurisdiction = toJur
	evt.Amount = amt.String()
	evt = withExtra(evt, map[string]interface{}{"fromJurisdiction": fromJur})
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = dbTx.Commit().Error; err != nil {
		return nil, err
	}
	return &schema.RespBridge{Jurisdiction: toJur, Owner: toAddr, Amount: amt.String(), EventId: evt.EventId}, nil
}

// clockRanOut reports an inactive escrow whose armed clock has expired; such
// an escrow is condemned and only the flush sweep may touch it.
func clockRanOut(esc schema.JurisdictionEscrow, now time.Time) bool {
	return esc.ActivationStatus == schema.EscrowInactive &&
		!esc.ClockStartedAt.IsZero() && !now.Before(esc.ClockExpiresAt)
}

// escrowIssue moves amt into the jurisdiction escrow and mints derivative to
// owner; starts the death clock on a fresh jurisdiction.
func (l *Ledger) escrowIssue(jurisdiction, owner string, amt *big.Int, now time.Time, dbTx *gorm.DB) error {
	esc, err := l.wdb.GetEscrowTx(jurisdiction, dbTx)
	if err == schema.ErrEscrowNotFound {
		esc = schema.JurisdictionEscrow{
			Code:             jurisdiction,
			LockedBalance:    "0",
			DerivativeSupply: "0",
			ActivationStatus: schema.EscrowInactive,
		}
		err = nil
	}
	if err != nil {
		return err
	}
	if esc.ActivationStatus == schema.EscrowFlushed || clockRanOut(esc, now) {
		return schema.ErrDeathClockExpired
	}
	if esc.ActivationStatus == schema.EscrowInactive && esc.ClockStartedAt.IsZero() {
		if err := l.startClock(&esc, now, dbTx); err != nil {
			return err
		}
	}
	esc.LockedBalance = new(big.Int).Add(mustBig(esc.LockedBalance), amt).String()
	esc.DerivativeSupply = new(big.Int).Add(mustBig(esc.DerivativeSupply), amt).String()
	if err = l.wdb.SaveEscrow(esc, dbTx); err != nil {
		return err
	}

	deriv, err := l.wdb.GetDerivativeTx(jurisdiction, owner, dbTx)
	if err == gorm.ErrRecordNotFound {
		deriv = schema.DerivativeBalance{Jurisdiction: jurisdiction, Owner: owner, Balance: "0"}
		err = nil
	}
	if err != nil {
		return err
	}
	deriv.Balance = new(big.Int).Add(mustBig(deriv.Balance), amt).String()
	return l.wdb.SaveDerivative(deriv, dbTx)
}

// escrowRedeem burns owner's derivative and releases amt from the escrow. An
// expired clock condemns the whole locked balance to the flush sweep, so no
// redeem may drain it first.
func (l *Ledger) escrowRedeem(jurisdiction, owner string, amt *big.Int, now time.Time, dbTx *gorm.DB) error {
	esc, err := l.wdb.GetEscrowTx(jurisdiction, dbTx)
	if err != nil {
		return err
	}
	if esc.ActivationStatus == schema.EscrowFlushed || clockRanOut(esc, now) {
		return schema.ErrDeathClockExpired
	}

	deriv, err := l.wdb.GetDerivativeTx(jurisdiction, owner, dbTx)
	if err == gorm.ErrRecordNotFound {
		return schema.ErrInsufficientDerivative
	}
	if err != nil {
		return err
	}
	derivBal := mustBig(deriv.Balance)
	if derivBal.Cmp(amt) < 0 {
		return schema.ErrInsufficientDerivative
	}

	deriv.Balance = derivBal.Sub(derivBal, amt).String()
	esc.LockedBalance = new(big.Int).Sub(mustBig(esc.LockedBalance), amt).String()
	esc.DerivativeSupply = new(big.Int).Sub(mustBig(esc.DerivativeSupply), amt).String()
	if err = l.wdb.SaveDerivative(deriv, dbTx); err != nil {
		return err
	}
	return l.wdb.SaveEscrow(esc, dbTx)
}

func (l *Ledger) GetEscrowInfo(jurisdiction string) (schema.JurisdictionEscrow, error) {
	if err := checkJurisdiction(jurisdiction); err != nil {
		return schema.JurisdictionEscrow{}, err
	}
	return l.wdb.GetEscrow(jurisdiction)
}

func (l *Ledger) GetDerivativeBalance(jurisdiction, owner string) (schema.DerivativeBalance, error) {
	if err := checkJurisdiction(jurisdiction); err != nil {
		return schema.DerivativeBalance{}, err
	}
	if err := checkAddress(owner); err != nil {
		return schema.DerivativeBalance{}, err
	}
	deriv, err := l.wdb.GetDerivative(jurisdiction, normAddr(owner))
	if err == gorm.ErrRecordNotFound {
		return schema.DerivativeBalance{Jurisdiction: jurisdiction, Owner: normAddr(owner), Balance: "0"}, nil
	}
	return deriv, err
}
