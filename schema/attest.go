package schema

import (
	"fmt"
	"strings"
)

// PresenceAttestation is the signed claim produced by the external presence
// verifier. The core validates the signature, freshness, nonce and confidence
// only; it never sees the underlying liveness data.
type PresenceAttestation struct {
	Account    string `json:"account"`    // 0x hex address of the attested account
	Nonce      string `json:"nonce"`      // verifier-unique id, consumed exactly once
	Timestamp  int64  `json:"timestamp"`  // unix seconds, verifier clock
	Confidence int    `json:"confidence"` // 0..100 liveness confidence
	Signature  string `json:"signature"`  // 0x hex, 65-byte secp256k1 personal-sign
}

// SigningPayload is the exact byte string the verifier signs (EIP-191
// personal message). Account is lower-cased so signature checks are
// case-insensitive on the address.
func (a PresenceAttestation) SigningPayload() []byte {
	return []byte(fmt.Sprintf("equiledger-presence:%s:%s:%d:%d",
		strings.ToLower(a.Account), a.Nonce, a.Timestamp, a.Confidence))
}
