package equiledger

import (
	"time"

	"github.com/equiledger/equiledger/schema"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// recoverAttestationSigner recovers the 0x address that personal-signed the
// attestation payload. Accepts both 0/1 and 27/28 recovery ids.
func recoverAttestationSigner(att schema.PresenceAttestation) (string, error) {
	sig, err := hexutil.Decode(att.Signature)
	if err != nil || len(sig) != 65 {
		return "", schema.ErrInvalidAttestation
	}
	if sig[64] >= 27 {
		sig = append([]byte{}, sig...)
		sig[64] -= 27
	}
	hash := accounts.TextHash(att.SigningPayload())
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", schema.ErrInvalidAttestation
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// verifyAttestation runs the full gate: shape, signature against the
// configured verifier, freshness window, confidence floor, nonce replay.
// The nonce is only checked here; it is consumed after the issuance commits.
func (l *Ledger) verifyAttestation(att schema.PresenceAttestation, now time.Time) error {
	if att.Nonce == "" || att.Timestamp <= 0 {
		return schema.ErrInvalidAttestation
	}
	if err := checkAddress(att.Account); err != nil {
		return schema.ErrInvalidAttestation
	}

	params := l.config.GetParams()
	signer, err := recoverAttestationSigner(att)
	if err != nil {
		return err
	}
	if params.VerifierAddr == "" || normAddr(signer) != normAddr(params.VerifierAddr) {
		return schema.ErrInvalidAttestation
	}

	age := now.Unix() - att.Timestamp
	if age > params.FreshnessWindowSec || -age > params.ClockSkewSec {
		return schema.ErrStaleAttestation
	}

	if att.Confidence < params.MinConfidence {
		return schema.ErrLowConfidence
	}

	if l.store.IsExistNonce(att.Nonce) {
		return schema.ErrReplayedAttestation
	}
	return nil
}
