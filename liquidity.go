package equiledger

import (
	"math/big"
	"time"

	"github.com/equiledger/equiledger/schema"
	"gorm.io/gorm"
)

const dailyWindowDuration = 24 * time.Hour

// checkAndRecordConversion enforces the rolling daily conversion gate and
// records the volume inside dbTx. The limit is a bps share of the owner's
// open collateral; an owner with nothing locked converts unconditionally.
func (l *Ledger) checkAndRecordConversion(owner string, amount *big.Int, now time.Time, dbTx *gorm.DB) error {
	locked, err := l.lockedCollateral(owner)
	if err != nil {
		return err
	}

	win, err := l.wdb.GetDailyWindow(owner)
	if err == gorm.ErrRecordNotFound {
		win = schema.DailyWindow{Owner: owner, VolumeUsed: "0", WindowStart: now}
		err = nil
	}
	if err != nil {
		return err
	}
	// lazy window reset
	if now.Sub(win.WindowStart) >= dailyWindowDuration {
		win.WindowStart = now
		win.VolumeUsed = "0"
	}

	if locked.Sign() > 0 {
		params := l.config.GetParams()
		limit := bpsShare(locked, params.DailyLimitBps)
		used := new(big.Int).Add(mustBig(win.VolumeUsed), amount)
		if used.Cmp(limit) > 0 {
			return schema.ErrDailyLimitExceeded
		}
	}
	win.VolumeUsed = new(big.Int).Add(mustBig(win.VolumeUsed), amount).String()
	return l.wdb.SaveDailyWindow(win, dbTx)
}

// Allowance reports the remaining daily conversion headroom.
func (l *Ledger) Allowance(owner string) (schema.Allowance, error) {
	if err := checkAddress(owner); err != nil {
		return schema.Allowance{}, err
	}
	addr := normAddr(owner)
	now := time.Now()

	locked, err := l.lockedCollateral(addr)
	if err != nil {
		return schema.Allowance{}, err
	}
	params := l.config.GetParams()
	limit := bpsShare(locked, params.DailyLimitBps)

	res := schema.Allowance{
		Owner:      addr,
		DailyLimit: limit.String(),
		VolumeUsed: "0",
		Remaining:  limit.String(),
		FirstUse:   true,
	}

	win, err := l.wdb.GetDailyWindow(addr)
	if err == gorm.ErrRecordNotFound {
		return res, nil
	}
	if err != nil {
		return schema.Allowance{}, err
	}

	res.FirstUse = false
	res.WindowReset = win.WindowStart.Add(dailyWindowDuration)
	if now.Sub(win.WindowStart) >= dailyWindowDuration {
		// window already elapsed; next conversion starts a fresh one
		return res, nil
	}

	used := mustBig(win.VolumeUsed)
	res.VolumeUsed = used.String()
	remaining := new(big.Int).Sub(limit, used)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}
	res.Remaining = remaining.String()
	return res, nil
}
