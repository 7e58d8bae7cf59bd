package config

import (
	"path"

	"github.com/equiledger/equiledger/config/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 10,
	})
	if err != nil {
		panic(err)
	}
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, "config.sqlite")), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 10,
	})
	if err != nil {
		panic(err)
	}
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.LedgerParams{}, &schema.AdminApiKey{}, &schema.IpRateWhitelist{})
}

// GetParams returns the stored parameter row, or compiled-in defaults when the
// table is still empty.
func (w *Wdb) GetParams() (params schema.LedgerParams, err error) {
	err = w.Db.First(&params).Error
	if err == gorm.ErrRecordNotFound {
		return DefaultParams(), nil
	}
	return
}

func (w *Wdb) GetAllAvailableAdminKeys() (keys []schema.AdminApiKey, err error) {
	err = w.Db.Model(&schema.AdminApiKey{}).Where("available = ?", true).Find(&keys).Error
	return
}

func (w *Wdb) InsertAdminKey(key schema.AdminApiKey) error {
	return w.Db.Create(&key).Error
}

func (w *Wdb) GetAllAvailableIpRateWhitelist() (ips []schema.IpRateWhitelist, err error) {
	err = w.Db.Model(&schema.IpRateWhitelist{}).Where("available = ?", true).Find(&ips).Error
	return
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
