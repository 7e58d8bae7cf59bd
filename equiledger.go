package equiledger

import (
	"sync"
	"time"

	"github.com/equiledger/equiledger/common"
	"github.com/equiledger/equiledger/config"
	"github.com/equiledger/equiledger/schema"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Ledger is the authoritative sequencer core. All mutating operations are
// serialized by applyLocker, so checks inside an operation see a frozen state.
type Ledger struct {
	store       *Store
	engine      *gin.Engine
	applyLocker sync.Mutex

	scheduler *gocron.Scheduler
	cache     *Cache
	config    *config.Config
	wdb       *Wdb

	kwriters map[string]*KWriter // nil entries when kafka is disabled
}

func New(
	boltDirPath, mySqlDsn string, sqliteDir string, useSqlite bool,
	useS3 bool, s3AccKey, s3SecretKey, s3BucketPrefix, s3Region, s3Endpoint string,
	useKafka bool, kafkaUri string,
) *Ledger {
	var err error
	KVDb := &Store{}
	if useS3 {
		KVDb, err = NewS3Store(s3AccKey, s3SecretKey, s3Region, s3BucketPrefix, s3Endpoint)
	} else {
		KVDb, err = NewBoltStore(boltDirPath)
	}
	if err != nil {
		panic(err)
	}

	wdb := &Wdb{}
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewMysqlDb(mySqlDsn)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}

	kwriters := make(map[string]*KWriter)
	if useKafka {
		kwriters, err = NewKWriters(kafkaUri)
		if err != nil {
			panic(err)
		}
	}

	l := &Ledger{
		config:    config.New(mySqlDsn, sqliteDir, useSqlite),
		store:     KVDb,
		engine:    gin.Default(),
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     NewCache(),
		wdb:       wdb,
		kwriters:  kwriters,
	}

	if err := l.initSupplyState(); err != nil {
		panic(err)
	}
	l.updateSnapshot()
	return l
}

// initSupplyState writes the genesis aggregate row on first boot.
func (l *Ledger) initSupplyState() error {
	_, err := l.wdb.GetSupplyState()
	if err == gorm.ErrRecordNotFound {
		return l.wdb.SaveSupplyState(schema.SupplyState{
			ID:          1,
			TotalIssued: "0",
			TotalBurned: "0",
			CurrentEra:  schema.EraFoundation,
		}, nil)
	}
	return err
}

func (l *Ledger) Run(port string) {
	l.config.Run()
	go l.runAPI(port)
	go l.runJobs()
	go common.NewMetricServer()
}

func (l *Ledger) Close() {
	l.scheduler.Stop()
	for _, kw := range l.kwriters {
		kw.Close()
	}
	l.config.Close()
	l.wdb.Close()
	if err := l.store.Close(); err != nil {
		log.Error("l.store.Close()", "err", err)
	}
}
