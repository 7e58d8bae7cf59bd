package equiledger

import (
	"math/big"

	cfgSchema "github.com/equiledger/equiledger/config/schema"
	"github.com/equiledger/equiledger/schema"
	"gorm.io/gorm"
)

type eraPolicy struct {
	issuance        *big.Int
	accountShareBps int64
	burnEligible    bool
}

// eraPolicyFor is the per-era issuance table. Equilibrium has no regular
// issuance; only a re-vitalization mints there.
func eraPolicyFor(era string, params cfgSchema.LedgerParams) eraPolicy {
	switch era {
	case schema.EraFoundation:
		return eraPolicy{
			issuance:        mustBig(params.FoundationIssuance),
			accountShareBps: params.AccountShareBps,
		}
	case schema.EraScarcity:
		return eraPolicy{
			issuance:        mustBig(params.ScarcityIssuance),
			accountShareBps: params.AccountShareBps,
			burnEligible:    true,
		}
	default:
		return eraPolicy{
			issuance:        new(big.Int),
			accountShareBps: params.AccountShareBps,
		}
	}
}

// burnActive: scarcity era and outstanding supply above the per-citizen
// target. Outside that window transfers move value without destroying any.
func burnActive(st schema.SupplyState, params cfgSchema.LedgerParams) bool {
	if st.CurrentEra != schema.EraScarcity {
		return false
	}
	outstanding := new(big.Int).Sub(mustBig(st.TotalIssued), mustBig(st.TotalBurned))
	target := new(big.Int).Mul(mustBig(params.UnitPerCitizen), big.NewInt(st.TotalVerifiedAccounts))
	return outstanding.Cmp(target) > 0
}

// checkEraTransition advances CurrentEra when a trigger holds; transitions are
// monotonic and each one appends an EraTransition row plus a ledger event
// inside dbTx. Called at the end of every supply-mutating operation.
func (l *Ledger) checkEraTransition(st *schema.SupplyState, dbTx *gorm.DB) error {
	params := l.config.GetParams()

	if st.CurrentEra == schema.EraFoundation {
		if mustBig(st.TotalIssued).Cmp(mustBig(params.SupplyThreshold)) >= 0 {
			if err := l.recordTransition(st, schema.EraScarcity, "supply_threshold_reached", dbTx); err != nil {
				return err
			}
		}
	}

	if st.CurrentEra == schema.EraScarcity && st.TotalVerifiedAccounts > 0 {
		outstanding := new(big.Int).Sub(mustBig(st.TotalIssued), mustBig(st.TotalBurned))
		target := new(big.Int).Mul(mustBig(params.UnitPerCitizen), big.NewInt(st.TotalVerifiedAccounts))
		diff := new(big.Int).Abs(new(big.Int).Sub(outstanding, target))
		band := bpsShare(target, params.ToleranceBps)
		if diff.Cmp(band) <= 0 {
			if err := l.recordTransition(st, schema.EraEquilibrium, "equilibrium_band_reached", dbTx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Ledger) recordTransition(st *schema.SupplyState, newEra, reason string, dbTx *gorm.DB) error {
	oldEra := st.CurrentEra
	st.CurrentEra = newEra
	log.Info("era transition", "old", oldEra, "new", newEra, "reason", reason)

	et := schema.EraTransition{
		OldEra:      oldEra,
		NewEra:      newEra,
		TotalIssued: st.TotalIssued,
		TotalBurned: st.TotalBurned,
		Verified:    st.TotalVerifiedAccounts,
		ReasonTag:   reason,
	}
	if err := l.wdb.InsertEraTransition(et, dbTx); err != nil {
		return err
	}

	evt := withExtra(newEvent(schema.EventEraTransition, *st, *st), map[string]interface{}{
		"oldEra":   oldEra,
		"newEra":   newEra,
		"reason":   reason,
		"verified": st.TotalVerifiedAccounts,
	})
	return l.appendEvent(evt, dbTx)
}

func (l *Ledger) GetEraTransitions() ([]schema.EraTransition, error) {
	return l.wdb.GetEraTransitions()
}
