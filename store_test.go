package equiledger

import (
	"testing"
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	s, err := NewBoltStore(t.TempDir())
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreNonce(t *testing.T) {
	s := newTestStore(t)
	consumedAt := time.Now().Unix()

	assert.False(t, s.IsExistNonce("nonce-1"))
	assert.NoError(t, s.SaveNonce("nonce-1", consumedAt))
	assert.True(t, s.IsExistNonce("nonce-1"))

	nonces, err := s.LoadAllNonces()
	assert.NoError(t, err)
	assert.Equal(t, map[string]int64{"nonce-1": consumedAt}, nonces)

	assert.NoError(t, s.DeleteNonce("nonce-1"))
	assert.False(t, s.IsExistNonce("nonce-1"))
}

func TestStoreEventArchive(t *testing.T) {
	s := newTestStore(t)

	evt := schema.LedgerEvent{
		EventId:    uuid.NewString(),
		Action:     schema.EventTransfer,
		Account:    testAlice,
		Amount:     "100",
		PostIssued: "1000",
		PostBurned: "5",
	}
	assert.False(t, s.IsExistEventArchive(evt.EventId))
	assert.NoError(t, s.SaveEventArchive(evt))
	assert.True(t, s.IsExistEventArchive(evt.EventId))

	loaded, err := s.LoadEventArchive(evt.EventId)
	assert.NoError(t, err)
	assert.Equal(t, evt.Action, loaded.Action)
	assert.Equal(t, evt.Amount, loaded.Amount)
	assert.Equal(t, evt.PostIssued, loaded.PostIssued)
}

func TestPruneNonces(t *testing.T) {
	l, _ := newTestLedger(t)

	now := time.Now().Unix()
	assert.NoError(t, l.store.SaveNonce("old", now-48*3600))
	assert.NoError(t, l.store.SaveNonce("fresh", now))

	l.pruneNonces()

	assert.False(t, l.store.IsExistNonce("old"))
	assert.True(t, l.store.IsExistNonce("fresh"))
}
