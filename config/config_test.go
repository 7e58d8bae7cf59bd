package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestConfig(t *testing.T) *Config {
	c := New("", t.TempDir(), true)
	t.Cleanup(c.Close)
	return c
}

func TestDefaultParamsFallback(t *testing.T) {
	c := newTestConfig(t)

	// empty table falls back to the compiled-in defaults
	params := c.GetParams()
	assert.Equal(t, DefaultParams(), params)
	assert.Equal(t, int64(5000), params.AccountShareBps)
	assert.Equal(t, "GLOBAL", params.EscrowSplitJur)
}

func TestSetParamsRoundTrip(t *testing.T) {
	c := newTestConfig(t)

	params := DefaultParams()
	params.BurnRateBps = 750
	params.VerifierAddr = "0x3333333333333333333333333333333333333333"
	assert.NoError(t, c.SetParams(params))
	assert.Equal(t, int64(750), c.GetParams().BurnRateBps)

	// persisted: a fresh read from the same db row sees the update
	stored, err := c.wdb.GetParams()
	assert.NoError(t, err)
	assert.Equal(t, int64(750), stored.BurnRateBps)
	assert.Equal(t, params.VerifierAddr, stored.VerifierAddr)
}

func TestAdminKeys(t *testing.T) {
	c := newTestConfig(t)

	assert.False(t, c.IsAdminKey("k1"))
	assert.NoError(t, c.AddAdminKey("k1", "ops"))
	assert.True(t, c.IsAdminKey("k1"))
	assert.False(t, c.IsAdminKey("k2"))
}
