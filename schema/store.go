package schema

var (
	// bucket
	AttestNonceBucket  = "attest-nonce-bucket"  // key: nonce, val: consumed-at unix seconds
	EventArchiveBucket = "event-archive-bucket" // key: eventId, val: json.Marshal(LedgerEvent)
	ConstantsBucket    = "constants-bucket"
)

var AllBuckets = []string{
	AttestNonceBucket,
	EventArchiveBucket,
	ConstantsBucket,
}
