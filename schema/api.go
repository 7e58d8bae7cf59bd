package schema

type RespErr struct {
	Err string `json:"error"`
}

func (r RespErr) Error() string {
	return r.Err
}

// ReqTransfer is a sequencer-authenticated base unit transfer.
type ReqTransfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ReqLock struct {
	Owner       string `json:"owner"`
	Amount      string `json:"amount"`
	MinDuration int64  `json:"minDuration"` // seconds
	MaxDuration int64  `json:"maxDuration"` // seconds
}

type ReqBridge struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

type ReqCrossTransfer struct {
	FromJurisdiction string `json:"fromJurisdiction"`
	ToJurisdiction   string `json:"toJurisdiction"`
	From             string `json:"from"`
	To               string `json:"to"`
	Amount           string `json:"amount"`
}

type RespIssuance struct {
	Account       string `json:"account"`
	AccountShare  string `json:"accountShare"`
	CommunityPool string `json:"communityPool"`
	Era           string `json:"era"`
	EventId       string `json:"eventId"`
}

type RespTransfer struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Sent      string `json:"sent"`
	Burned    string `json:"burned"`
	Received  string `json:"received"`
	Community string `json:"community,omitempty"`
	Escrow    string `json:"escrow,omitempty"`
	EventId   string `json:"eventId"`
}

type RespLock struct {
	LockId  string `json:"lockId"`
	EventId string `json:"eventId"`
}

type RespBridge struct {
	Jurisdiction string `json:"jurisdiction"`
	Owner        string `json:"owner"`
	Amount       string `json:"amount"`
	EventId      string `json:"eventId"`
}

type RespSweep struct {
	Flushed []string `json:"flushed"` // jurisdiction codes flushed this pass
}
