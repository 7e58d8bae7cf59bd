package equiledger

import (
	"math/big"
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/shopspring/decimal"
)

// SweepInactivity removes one dormant account from the active set: burns one
// equilibrium unit from it and marks it inactive. Privileged; the counterpart
// re-vitalization happens automatically on the account's next attestation.
func (l *Ledger) SweepInactivity(address string) error {
	l.applyLocker.Lock()
	defer l.applyLocker.Unlock()

	if err := checkAddress(address); err != nil {
		return err
	}
	addr := normAddr(address)
	now := time.Now()
	params := l.config.GetParams()

	acc, err := l.wdb.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc.Inactive {
		return schema.ErrAccountAlreadyInactive
	}
	if now.Sub(acc.LastActivityAt) < time.Duration(params.InactivityThresholdSec)*time.Second {
		return schema.ErrAccountStillActive
	}

	burn := mustBig(params.EquilibriumIssuance)
	balance := mustBig(acc.Balance)
	if balance.Cmp(burn) < 0 {
		if params.SweepUnderflowPolicy == schema.SweepPolicyClamp {
			burn = new(big.Int).Set(balance)
		} else {
			return schema.ErrInsufficientBalanceForRemoval
		}
	}

	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return err
	}
	pre := st

	acc.Balance = balance.Sub(balance, burn).String()
	acc.Inactive = true
	st.TotalBurned = new(big.Int).Add(mustBig(st.TotalBurned), burn).String()
	st.InactiveAccounts += 1
	st.InactivityRemovals += 1
	// an account that only ever received transfers was never in the verified
	// count, so it must not leave it either
	if acc.Verified {
		st.TotalVerifiedAccounts -= 1
	}

	dbTx := l.wdb.Db.Begin()
	if err = l.wdb.SaveAccount(acc, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	evt := newEvent(schema.EventInactivitySweep, pre, st)
	evt.Account = addr
	evt.Amount = burn.String()
	if err = l.appendEvent(evt, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	if err = l.checkEraTransition(&st, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	if err = l.wdb.SaveSupplyState(st, dbTx); err != nil {
		dbTx.Rollback()
		return err
	}
	return dbTx.Commit().Error
}

// ActiveSupplySnapshot is a pure read over the aggregate row.
func (l *Ledger) ActiveSupplySnapshot() (schema.SupplySnapshot, error) {
	st, err := l.wdb.GetSupplyState()
	if err != nil {
		return schema.SupplySnapshot{}, err
	}
	active := new(big.Int).Sub(mustBig(st.TotalIssued), mustBig(st.TotalBurned))

	perActive := decimal.Zero
	if st.TotalVerifiedAccounts > 0 {
		perActive = decimal.NewFromBigInt(active, -18).
			Div(decimal.NewFromInt(st.TotalVerifiedAccounts)).
			Round(6)
	}
	return schema.SupplySnapshot{
		TotalIssued:     st.TotalIssued,
		TotalBurned:     st.TotalBurned,
		ActiveSupply:    active.String(),
		CurrentEra:      st.CurrentEra,
		ActiveAccounts:  st.TotalVerifiedAccounts,
		InactiveCount:   st.InactiveAccounts,
		ReVitalizations: st.ReVitalizations,
		SupplyPerActive: perActive.String(),
	}, nil
}
