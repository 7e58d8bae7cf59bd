package equiledger

import (
	"testing"
	"time"

	cfgSchema "github.com/equiledger/equiledger/config/schema"
	"github.com/equiledger/equiledger/schema"
	"github.com/stretchr/testify/assert"
)

func TestRecoverAttestationSigner(t *testing.T) {
	_, signer := newTestLedger(t)
	att := signedAttestation(t, signer, testAlice, "nonce-1", time.Now().Unix(), 95)

	recovered, err := recoverAttestationSigner(att)
	assert.NoError(t, err)
	assert.Equal(t, signer.Address.Hex(), recovered)
}

func TestVerifyAttestationTamperedPayload(t *testing.T) {
	l, signer := newTestLedger(t)
	att := signedAttestation(t, signer, testAlice, "nonce-1", time.Now().Unix(), 95)
	att.Confidence = 100 // payload no longer matches the signature

	_, err := l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrInvalidAttestation)
}

func TestVerifyAttestationMalformed(t *testing.T) {
	l, signer := newTestLedger(t)

	att := signedAttestation(t, signer, testAlice, "nonce-1", time.Now().Unix(), 95)
	att.Signature = "0x1234"
	_, err := l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrInvalidAttestation)

	att = signedAttestation(t, signer, "not-an-address", "nonce-2", time.Now().Unix(), 95)
	_, err = l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrInvalidAttestation)

	att = signedAttestation(t, signer, testAlice, "", time.Now().Unix(), 95)
	_, err = l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrInvalidAttestation)
}

func TestVerifyAttestationFreshness(t *testing.T) {
	l, signer := newTestLedger(t)

	// older than the 60s window
	att := signedAttestation(t, signer, testAlice, "nonce-1", time.Now().Unix()-120, 95)
	_, err := l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrStaleAttestation)

	// future beyond allowed skew
	att = signedAttestation(t, signer, testAlice, "nonce-2", time.Now().Unix()+120, 95)
	_, err = l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrStaleAttestation)
}

func TestVerifyAttestationLowConfidence(t *testing.T) {
	l, signer := newTestLedger(t)
	att := signedAttestation(t, signer, testAlice, "nonce-1", time.Now().Unix(), 50)

	_, err := l.IssueOnPresence(att)
	assert.ErrorIs(t, err, schema.ErrLowConfidence)
}

func TestVerifyAttestationReplay(t *testing.T) {
	l, signer := newTestLedger(t)

	_, err := l.IssueOnPresence(attestNow(t, signer, testAlice, "nonce-1"))
	assert.NoError(t, err)

	// same nonce, fresh signature
	_, err = l.IssueOnPresence(attestNow(t, signer, testAlice, "nonce-1"))
	assert.ErrorIs(t, err, schema.ErrReplayedAttestation)

	// replay from a different account is rejected too
	_, err = l.IssueOnPresence(attestNow(t, signer, testBob, "nonce-1"))
	assert.ErrorIs(t, err, schema.ErrReplayedAttestation)
}

func TestVerifyAttestationWrongSigner(t *testing.T) {
	l, signer := newTestLedger(t)
	setParams(t, l, func(p *cfgSchema.LedgerParams) {
		p.VerifierAddr = testBob // signer no longer matches
	})

	_, err := l.IssueOnPresence(attestNow(t, signer, testAlice, "nonce-1"))
	assert.ErrorIs(t, err, schema.ErrInvalidAttestation)
}
