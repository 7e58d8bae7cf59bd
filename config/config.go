package config

import (
	"sync"
	"time"

	"github.com/equiledger/equiledger/config/schema"
	"github.com/go-co-op/gocron"
)

type Config struct {
	wdb       *Wdb
	scheduler *gocron.Scheduler

	lock        sync.RWMutex
	params      schema.LedgerParams
	adminKeys   map[string]struct{}
	ipWhiteList map[string]struct{}
}

func New(mysqlDsn string, sqliteDir string, useSqlite bool) *Config {
	var wdb *Wdb
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewMysqlDb(mysqlDsn)
	}
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}
	params, err := wdb.GetParams()
	if err != nil {
		panic(err)
	}
	c := &Config{
		wdb:         wdb,
		scheduler:   gocron.NewScheduler(time.UTC),
		params:      params,
		adminKeys:   make(map[string]struct{}),
		ipWhiteList: make(map[string]struct{}),
	}
	c.updateAdminKeys()
	c.updateIPWhiteList()
	return c
}

// DefaultParams are the compiled-in policy defaults, used until an operator
// writes a LedgerParams row. Amounts are 10^-18 units.
func DefaultParams() schema.LedgerParams {
	return schema.LedgerParams{
		UnitPerCitizen:      "1000000000000000000",              // 1 EQU per citizen
		SupplyThreshold:     "1000000000000000000000000",        // 1,000,000 EQU
		ToleranceBps:        10,                                 // 0.1%
		FoundationIssuance:  "10000000000000000000",             // 10 EQU per attestation
		ScarcityIssuance:    "1000000000000000000",              // 1 EQU
		EquilibriumIssuance: "1000000000000000000",              // 1 EQU, re-vitalization only
		AccountShareBps:     5000,

		BurnRateBps:    500,
		CommunityBps:   200,
		EscrowBps:      100,
		MaintenanceBps: 100,
		EscrowSplitJur: "GLOBAL",

		FreshnessWindowSec: 60,
		ClockSkewSec:       10,
		MinConfidence:      80,

		MinLockDurationSec: 7 * 24 * 3600,
		MaxLockDurationSec: 730 * 24 * 3600,

		DailyLimitBps: 1000, // 10% of locked balance per 24h

		GracePeriodSec: 180 * 24 * 3600,

		InactivityThresholdSec: 365 * 24 * 3600,
		SweepUnderflowPolicy:   "fail",

		CommunityPoolAddr: "0x00000000000000000000000000000000c0111111",
		MaintenanceAddr:   "0x00000000000000000000000000000000de7a1111",
		DefaultPoolAddr:   "0x00000000000000000000000000000000f1005111",
	}
}

func (c *Config) GetParams() schema.LedgerParams {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.params
}

// SetParams persists and applies a new parameter row; used by tests and
// bootstrap tooling.
func (c *Config) SetParams(params schema.LedgerParams) error {
	params.ID = 1
	if err := c.wdb.Db.Save(&params).Error; err != nil {
		return err
	}
	c.lock.Lock()
	c.params = params
	c.lock.Unlock()
	return nil
}

func (c *Config) IsAdminKey(key string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	_, ok := c.adminKeys[key]
	return ok
}

// AddAdminKey persists and immediately applies an admin key.
func (c *Config) AddAdminKey(key, description string) error {
	if err := c.wdb.InsertAdminKey(schema.AdminApiKey{ApiKey: key, Available: true, Description: description}); err != nil {
		return err
	}
	c.lock.Lock()
	c.adminKeys[key] = struct{}{}
	c.lock.Unlock()
	return nil
}

func (c *Config) GetIPWhiteList() *map[string]struct{} {
	c.lock.RLock()
	defer c.lock.RUnlock()
	wl := c.ipWhiteList
	return &wl
}

func (c *Config) Run() {
	go c.runJobs()
}

func (c *Config) Close() {
	c.scheduler.Stop()
	c.wdb.Close()
}
