package equiledger

import (
	"path"
	"time"

	"github.com/equiledger/equiledger/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, "ledger.sqlite")), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(
		&schema.Account{}, &schema.SupplyState{}, &schema.LockRecord{},
		&schema.JurisdictionEscrow{}, &schema.DerivativeBalance{},
		&schema.DailyWindow{}, &schema.EraTransition{}, &schema.LedgerEvent{},
	)
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}

// account

func (w *Wdb) GetAccount(addr string) (schema.Account, error) {
	res := schema.Account{}
	err := w.Db.Where("address = ?", addr).First(&res).Error
	if err == gorm.ErrRecordNotFound {
		return res, schema.ErrAccountNotFound
	}
	return res, err
}

// GetAccountTx reads through an open transaction so earlier writes in the
// same apply are visible.
func (w *Wdb) GetAccountTx(addr string, tx *gorm.DB) (schema.Account, error) {
	db := w.Db
	if tx != nil {
		db = tx
	}
	res := schema.Account{}
	err := db.Where("address = ?", addr).First(&res).Error
	if err == gorm.ErrRecordNotFound {
		return res, schema.ErrAccountNotFound
	}
	return res, err
}

func (w *Wdb) SaveAccount(acc schema.Account, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Save(&acc).Error
}

func (w *Wdb) GetAllAccounts() ([]schema.Account, error) {
	res := make([]schema.Account, 0)
	err := w.Db.Find(&res).Error
	return res, err
}

// supply state singleton

func (w *Wdb) GetSupplyState() (schema.SupplyState, error) {
	res := schema.SupplyState{}
	err := w.Db.First(&res).Error
	return res, err
}

func (w *Wdb) SaveSupplyState(st schema.SupplyState, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	st.ID = 1
	return db.Save(&st).Error
}

// vault locks

func (w *Wdb) InsertLock(lock schema.LockRecord, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Create(&lock).Error
}

func (w *Wdb) GetLock(id string) (schema.LockRecord, error) {
	res := schema.LockRecord{}
	err := w.Db.Where("id = ?", id).First(&res).Error
	if err == gorm.ErrRecordNotFound {
		return res, schema.ErrLockNotFound
	}
	return res, err
}

func (w *Wdb) GetLocksByOwner(owner string) ([]schema.LockRecord, error) {
	res := make([]schema.LockRecord, 0)
	err := w.Db.Where("owner = ?", owner).Order("created_at asc").Find(&res).Error
	return res, err
}

func (w *Wdb) GetLockedRecordsByOwner(owner string) ([]schema.LockRecord, error) {
	res := make([]schema.LockRecord, 0)
	err := w.Db.Where("owner = ? and status = ?", owner, schema.LockStatusLocked).Find(&res).Error
	return res, err
}

func (w *Wdb) SaveLock(lock schema.LockRecord, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Save(&lock).Error
}

func (w *Wdb) GetAllLocks() ([]schema.LockRecord, error) {
	res := make([]schema.LockRecord, 0)
	err := w.Db.Find(&res).Error
	return res, err
}

// jurisdiction escrow

func (w *Wdb) GetEscrow(code string) (schema.JurisdictionEscrow, error) {
	res := schema.JurisdictionEscrow{}
	err := w.Db.Where("code = ?", code).First(&res).Error
	if err == gorm.ErrRecordNotFound {
		return res, schema.ErrEscrowNotFound
	}
	return res, err
}

func (w *Wdb) GetEscrowTx(code string, tx *gorm.DB) (schema.JurisdictionEscrow, error) {
	db := w.Db
	if tx != nil {
		db = tx
	}
	res := schema.JurisdictionEscrow{}
	err := db.Where("code = ?", code).First(&res).Error
	if err == gorm.ErrRecordNotFound {
		return res, schema.ErrEscrowNotFound
	}
	return res, err
}

func (w *Wdb) SaveEscrow(esc schema.JurisdictionEscrow, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Save(&esc).Error
}

func (w *Wdb) GetAllEscrows() ([]schema.JurisdictionEscrow, error) {
	res := make([]schema.JurisdictionEscrow, 0)
	err := w.Db.Find(&res).Error
	return res, err
}

// GetExpiredEscrows returns inactive escrows whose death clock has started and
// has run past now.
func (w *Wdb) GetExpiredEscrows(now time.Time) ([]schema.JurisdictionEscrow, error) {
	res := make([]schema.JurisdictionEscrow, 0)
	err := w.Db.Where("activation_status = ? and clock_started_at > ? and clock_expires_at <= ?",
		schema.EscrowInactive, time.Time{}, now).Find(&res).Error
	return res, err
}

// derivative balances

func (w *Wdb) GetDerivative(jurisdiction, owner string) (schema.DerivativeBalance, error) {
	res := schema.DerivativeBalance{}
	err := w.Db.Where("jurisdiction = ? and owner = ?", jurisdiction, owner).First(&res).Error
	return res, err
}

func (w *Wdb) GetDerivativeTx(jurisdiction, owner string, tx *gorm.DB) (schema.DerivativeBalance, error) {
	db := w.Db
	if tx != nil {
		db = tx
	}
	res := schema.DerivativeBalance{}
	err := db.Where("jurisdiction = ? and owner = ?", jurisdiction, owner).First(&res).Error
	return res, err
}

func (w *Wdb) SaveDerivative(d schema.DerivativeBalance, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Save(&d).Error
}

// daily conversion window

func (w *Wdb) GetDailyWindow(owner string) (schema.DailyWindow, error) {
	res := schema.DailyWindow{}
	err := w.Db.Where("owner = ?", owner).First(&res).Error
	return res, err
}

func (w *Wdb) SaveDailyWindow(win schema.DailyWindow, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Save(&win).Error
}

// era transitions

func (w *Wdb) InsertEraTransition(et schema.EraTransition, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Create(&et).Error
}

func (w *Wdb) GetEraTransitions() ([]schema.EraTransition, error) {
	res := make([]schema.EraTransition, 0)
	err := w.Db.Order("id asc").Find(&res).Error
	return res, err
}

// ledger events

func (w *Wdb) InsertEvent(evt schema.LedgerEvent, tx *gorm.DB) error {
	db := w.Db
	if tx != nil {
		db = tx
	}
	return db.Create(&evt).Error
}

// GetEvents pages on the autoincrement seq, so events sharing a creation
// second are never skipped or repeated across pages.
func (w *Wdb) GetEvents(cursorSeq int64, num int) ([]schema.LedgerEvent, error) {
	res := make([]schema.LedgerEvent, 0, num)
	err := w.Db.Where("seq > ?", cursorSeq).Order("seq asc").Limit(num).Find(&res).Error
	return res, err
}

func (w *Wdb) GetEventsByAccount(account string, num int) ([]schema.LedgerEvent, error) {
	res := make([]schema.LedgerEvent, 0, num)
	err := w.Db.Where("account = ?", account).Order("seq desc").Limit(num).Find(&res).Error
	return res, err
}

func (w *Wdb) GetUnpublishedEvents(num int) ([]schema.LedgerEvent, error) {
	res := make([]schema.LedgerEvent, 0, num)
	err := w.Db.Where("published = ?", false).Order("seq asc").Limit(num).Find(&res).Error
	return res, err
}

func (w *Wdb) SetEventPublished(eventId string) error {
	return w.Db.Model(&schema.LedgerEvent{}).Where("event_id = ?", eventId).Update("published", true).Error
}
