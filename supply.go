package equiledger

import (
	"math/big"
	"time"

	"github.com/equiledger/equiledger/schema"
	"gorm.io/gorm"
)

// IssueOnPresence applies one verified presence attestation: validates it,
// issues per the current era's table, records activity and consumes the nonce.
// The nonce is consumed just before the SQL commit, so a crash between the two
// can only lose one issuance, never replay it.
func (l *Ledger) IssueOnPresence(att schema.PresenceAttestation) (*schema.RespIssuance, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	now := time.Now()
	// 1. validate attestation
	if err := l.verifyAttestation(att, now); err != nil {
		return nil, err
	}
	params := l.config.GetParams()

	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return nil, err
	}
	pre := st
	addr := normAddr(att.Account)

	dbTx := l.wdb.Db.Begin()
	acc, err := l.getOrCreateAccount(addr, now, dbTx)
	if err != nil {
		dbTx.Rollback()
		return nil, err
	}

	// 2. verification + vitality bookkeeping
	firstVerification := !acc.Verified
	revitalized := acc.Inactive
	if firstVerification {
		acc.Verified = true
		st.TotalVerifiedAccounts += 1
	}
	if revitalized {
		acc.Inactive = false
		st.InactiveAccounts -= 1
		st.ReVitalizations += 1
		// a first verification already counted this account
		if !firstVerification {
			st.TotalVerifiedAccounts += 1
		}
	}
	acc.LastActivityAt = now

	// 3. issuance per era table; a re-vitalization mints one equilibrium unit
	// on top of (or, in equilibrium, instead of) the regular amount
	pol := eraPolicyFor(st.CurrentEra, params)
	amount := new(big.Int).Set(pol.issuance)
	if revitalized {
		amount.Add(amount, mustBig(params.EquilibriumIssuance))
	}
	poolShare := bpsShare(amount, schema.BpsDenominator-pol.accountShareBps)
	accountShare := new(big.Int).Sub(amount, poolShare) // integer remainder goes to the attested account

	acc.Balance = new(big.Int).Add(mustBig(acc.Balance), accountShare).String()
	if err = l.wdb.SaveAccount(acc, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if poolShare.Sign() > 0 {
		if err = l.creditAccount(normAddr(params.CommunityPoolAddr), poolShare, now, dbTx); err != nil {
			dbTx.Rollback()
			return nil, err
		}
	}
	st.TotalIssued = new(big.Int).Add(mustBig(st.TotalIssued), amount).String()

	// 4. events
	evt := newEvent(schema.EventIssuance, pre, st)
	evt.Account = addr
	evt.Amount = amount.String()
	evt = withExtra(evt, map[string]interface{}{
		"accountShare":      accountShare.String(),
		"poolShare":         poolShare.String(),
		"nonce":             att.Nonce,
		"firstVerification": firstVerification,
	})
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if revitalized {
		revEvt := newEvent(schema.EventReVitalization, pre, st)
		revEvt.Account = addr
		revEvt.Amount = params.EquilibriumIssuance
		if err = l.appendEvent(revEvt, dbTx); err != nil {
			dbTx.Rollback()
			return nil, err
		}
	}

	// 5. era check runs on the updated aggregates
	if err = l.checkEraTransition(&st, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.wdb.SaveSupplyState(st, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	// 6. consume the nonce, then commit
	if err = l.store.SaveNonce(att.Nonce, now.Unix()); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = dbTx.Commit().Error; err != nil {
		if delErr := l.store.DeleteNonce(att.Nonce); delErr != nil {
			log.Error("l.store.DeleteNonce(att.Nonce)", "err", delErr, "nonce", att.Nonce)
		}
		return nil, err
	}

	return &schema.RespIssuance{
		Account:       addr,
		AccountShare:  accountShare.String(),
		CommunityPool: poolShare.String(),
		Era:           st.CurrentEra,
		EventId:       evt.EventId,
	}, nil
}

// Transfer moves base units between accounts. While the scarcity burn window
// is open a transfer destroys burnRateBps of the amount and routes the
// community/escrow/maintenance splits; debit == burn + sum of credits always.
func (l *Ledger) Transfer(from, to, amount string) (*schema.RespTransfer, error) {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkAddress(from); err != nil {
		return nil, err
	}
	if err := checkAddress(to); err != nil {
		return nil, err
	}
	fromAddr, toAddr := normAddr(from), normAddr(to)
	if fromAddr == toAddr {
		return nil, schema.ErrInvalidAddress
	}
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	params := l.config.GetParams()
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return nil, err
	}
	pre := st

	fromAcc, err := l.wdb.GetAccount(fromAddr)
	if err != nil {
		return nil, err
	}
	fromBal := mustBig(fromAcc.Balance)
	if fromBal.Cmp(amt) < 0 {
		return nil, schema.ErrInsufficientBalance
	}

	// burn and split only while the deflation window is open
	burn, community, escrowShare, maintenance := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	if burnActive(st, params) {
		burn = bpsShare(amt, params.BurnRateBps)
		community = bpsShare(amt, params.CommunityBps)
		escrowShare = bpsShare(amt, params.EscrowBps)
		maintenance = bpsShare(amt, params.MaintenanceBps)
	}
	// integer remainders accrue to the recipient
	received := new(big.Int).Sub(amt, burn)
	received.Sub(received, community)
	received.Sub(received, escrowShare)
	received.Sub(received, maintenance)

	dbTx := l.wdb.Db.Begin()
	fromAcc.Balance = fromBal.Sub(fromBal, amt).String()
	if err = l.wdb.SaveAccount(fromAcc, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.creditAccount(toAddr, received, now, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if community.Sign() > 0 {
		if err = l.creditAccount(normAddr(params.CommunityPoolAddr), community, now, dbTx); err != nil {
			dbTx.Rollback()
			return nil, err
		}
	}
	if maintenance.Sign() > 0 {
		if err = l.creditAccount(normAddr(params.MaintenanceAddr), maintenance, now, dbTx); err != nil {
			dbTx.Rollback()
			return nil, err
		}
	}
	if escrowShare.Sign() > 0 {
		if err = l.creditEscrow(params.EscrowSplitJur, escrowShare, now, dbTx); err != nil {
			dbTx.Rollback()
			return nil, err
		}
	}
	if burn.Sign() > 0 {
		st.TotalBurned = new(big.Int).Add(mustBig(st.TotalBurned), burn).String()
	}

	evt := newEvent(schema.EventTransfer, pre, st)
	evt.Account = fromAddr
	evt.Counterparty = toAddr
	evt.Amount = amt.String()
	evt = withExtra(evt, map[string]interface{}{
		"burned":      burn.String(),
		"received":    received.String(),
		"community":   community.String(),
		"escrow":      escrowShare.String(),
		"maintenance": maintenance.String(),
	})
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}

	// a burn can close the gap to the equilibrium band
	if err = l.checkEraTransition(&st, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = l.wdb.SaveSupplyState(st, dbTx); err != nil {
		dbTx.Rollback()
		return nil, err
	}
	if err = dbTx.Commit().Error; err != nil {
		return nil, err
	}

	return &schema.RespTransfer{
		From:      fromAddr,
		To:        toAddr,
		Sent:      amt.String(),
		Burned:    burn.String(),
		Received:  received.String(),
		Community: community.String(),
		Escrow:    escrowShare.String(),
		EventId:   evt.EventId,
	}, nil
}

func (l *Ledger) GetAccountInfo(addr string) (schema.Account, error) {
	if err := checkAddress(addr); err != nil {
		return schema.Account{}, err
	}
	return l.wdb.GetAccount(normAddr(addr))
}

func (l *Ledger) getOrCreateAccount(addr string, now time.Time, dbTx *gorm.DB) (schema.Account, error) {
	acc, err := l.wdb.GetAccountTx(addr, dbTx)
	if err == schema.ErrAccountNotFound {
		acc = schema.Account{Address: addr, Balance: "0", LastActivityAt: now}
		db := l.wdb.Db
		if dbTx != nil {
			db = dbTx
		}
		return acc, db.Create(&acc).Error
	}
	return acc, err
}

func (l *Ledger) creditAccount(addr string, amount *big.Int, now time.Time, dbTx *gorm.DB) error {
	acc, err := l.getOrCreateAccount(addr, now, dbTx)
	if err != nil {
		return err
	}
	acc.Balance = new(big.Int).Add(mustBig(acc.Balance), amount).String()
	return l.wdb.SaveAccount(acc, dbTx)
}

// creditEscrow adds to a jurisdiction's escrow balance, creating the row and
// starting its death clock on the first qualifying credit.
func (l *Ledger) creditEscrow(jurisdiction string, amount *big.Int, now time.Time, dbTx *gorm.DB) error {
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
	if esc.ActivationStatus == schema.EscrowFlushed {
		return schema.ErrDeathClockExpired
	}
	if esc.ActivationStatus == schema.EscrowInactive && esc.ClockStartedAt.IsZero() {
		if err := l.startClock(&esc, now, dbTx); err != nil {
			return err
		}
	}
	esc.LockedBalance = new(big.Int).Add(mustBig(esc.LockedBalance), amount).String()
	return l.wdb.SaveEscrow(esc, dbTx)
}
