package equiledger

import (
	"encoding/json"
	"strconv"

	"github.com/equiledger/equiledger/rawdb"
	"github.com/equiledger/equiledger/schema"
)

type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	boltDb, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: boltDb}, nil
}

func NewS3Store(accKey, secretKey, region, bucketPrefix, endpoint string) (*Store, error) {
	s3Db, err := rawdb.NewS3DB(accKey, secretKey, region, bucketPrefix, endpoint)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: s3Db}, nil
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}

// attestation nonce set; value is the consumed-at unix second used by pruning

func (s *Store) IsExistNonce(nonce string) bool {
	return s.KVDb.Exist(schema.AttestNonceBucket, nonce)
}

func (s *Store) SaveNonce(nonce string, consumedAt int64) error {
	return s.KVDb.Put(schema.AttestNonceBucket, nonce, []byte(strconv.FormatInt(consumedAt, 10)))
}

func (s *Store) LoadAllNonces() (map[string]int64, error) {
	keys, err := s.KVDb.GetAllKey(schema.AttestNonceBucket)
	if err != nil {
		return nil, err
	}
	nonces := make(map[string]int64, len(keys))
	for _, key := range keys {
		val, err := s.KVDb.Get(schema.AttestNonceBucket, key)
		if err != nil {
			return nil, err
		}
		consumedAt, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return nil, err
		}
		nonces[key] = consumedAt
	}
	return nonces, nil
}

func (s *Store) DeleteNonce(nonce string) error {
	return s.KVDb.Delete(schema.AttestNonceBucket, nonce)
}

// event archive

func (s *Store) SaveEventArchive(evt schema.LedgerEvent) error {
	val, err := json.Marshal(&evt)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.EventArchiveBucket, evt.EventId, val)
}

func (s *Store) LoadEventArchive(id string) (*schema.LedgerEvent, error) {
	val, err := s.KVDb.Get(schema.EventArchiveBucket, id)
	if err != nil {
		return nil, err
	}
	evt := &schema.LedgerEvent{}
	if err := json.Unmarshal(val, evt); err != nil {
		return nil, err
	}
	return evt, nil
}

func (s *Store) IsExistEventArchive(id string) bool {
	return s.KVDb.Exist(schema.EventArchiveBucket, id)
}
