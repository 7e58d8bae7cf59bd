package sdk

import (
	"errors"
	"fmt"

	"github.com/equiledger/equiledger/schema"
	"gopkg.in/h2non/gentleman.v2"
)

// Client is a thin HTTP client over the ledger's public and admin API.
type Client struct {
	SCli *gentleman.Client

	apiKey string // optional; required for admin calls only
}

func New(ledgerUrl string) *Client {
	return &Client{
		SCli: gentleman.New().URL(ledgerUrl),
	}
}

func NewWithApiKey(ledgerUrl, apiKey string) *Client {
	cli := New(ledgerUrl)
	cli.apiKey = apiKey
	return cli
}

// submit ops

func (c *Client) SubmitAttestation(att schema.PresenceAttestation) (*schema.RespIssuance, error) {
	res := &schema.RespIssuance{}
	return res, c.postJSON("/attest", att, res)
}

func (c *Client) Transfer(from, to, amount string) (*schema.RespTransfer, error) {
	res := &schema.RespTransfer{}
	return res, c.postJSON("/transfer", schema.ReqTransfer{From: from, To: to, Amount: amount}, res)
}

func (c *Client) Lock(owner, amount string, minDuration, maxDuration int64) (*schema.RespLock, error) {
	res := &schema.RespLock{}
	req := schema.ReqLock{Owner: owner, Amount: amount, MinDuration: minDuration, MaxDuration: maxDuration}
	return res, c.postJSON("/vault/lock", req, res)
}

func (c *Client) BridgeIssue(jurisdiction, owner, amount string) (*schema.RespBridge, error) {
	res := &schema.RespBridge{}
	return res, c.postJSON(fmt.Sprintf("/bridge/issue/%s", jurisdiction), schema.ReqBridge{Owner: owner, Amount: amount}, res)
}

func (c *Client) BridgeRedeem(jurisdiction, owner, amount string) (*schema.RespBridge, error) {
	res := &schema.RespBridge{}
	return res, c.postJSON(fmt.Sprintf("/bridge/redeem/%s", jurisdiction), schema.ReqBridge{Owner: owner, Amount: amount}, res)
}

func (c *Client) CrossTransfer(fromJur, toJur, from, to, amount string) (*schema.RespBridge, error) {
	res := &schema.RespBridge{}
	req := schema.ReqCrossTransfer{
		FromJurisdiction: fromJur,
		ToJurisdiction:   toJur,
		From:             from,
		To:               to,
		Amount:           amount,
	}
	return res, c.postJSON("/bridge/transfer", req, res)
}

func (c *Client) SweepEscrows() (*schema.RespSweep, error) {
	res := &schema.RespSweep{}
	return res, c.postJSON("/escrow/sweep", nil, res)
}

// admin ops

func (c *Client) Unlock(lockId string) error {
	return c.postJSON(fmt.Sprintf("/admin/vault/unlock/%s", lockId), nil, nil)
}

func (c *Client) Liquidate(lockId string) error {
	return c.postJSON(fmt.Sprintf("/admin/vault/liquidate/%s", lockId), nil, nil)
}

func (c *Client) SweepInactivity(address string) error {
	return c.postJSON(fmt.Sprintf("/admin/vitality/sweep/%s", address), nil, nil)
}

func (c *Client) ActivateJurisdiction(jurisdiction string) error {
	return c.postJSON(fmt.Sprintf("/admin/escrow/activate/%s", jurisdiction), nil, nil)
}

// reads

func (c *Client) GetSupply() (*schema.SupplySnapshot, error) {
	res := &schema.SupplySnapshot{}
	return res, c.getJSON("/supply", res)
}

func (c *Client) GetEraTransitions() ([]schema.EraTransition, error) {
	res := make([]schema.EraTransition, 0)
	return res, c.getJSON("/era/transitions", &res)
}

func (c *Client) GetAccount(address string) (*schema.Account, error) {
	res := &schema.Account{}
	return res, c.getJSON(fmt.Sprintf("/account/%s", address), res)
}

func (c *Client) GetLocks(address string) ([]schema.LockRecord, error) {
	res := make([]schema.LockRecord, 0)
	return res, c.getJSON(fmt.Sprintf("/account/%s/locks", address), &res)
}

func (c *Client) GetAllowance(address string) (*schema.Allowance, error) {
	res := &schema.Allowance{}
	return res, c.getJSON(fmt.Sprintf("/account/%s/allowance", address), res)
}

func (c *Client) GetDerivativeBalance(jurisdiction, address string) (*schema.DerivativeBalance, error) {
	res := &schema.DerivativeBalance{}
	return res, c.getJSON(fmt.Sprintf("/account/%s/derivative/%s", address, jurisdiction), res)
}

func (c *Client) GetEscrow(jurisdiction string) (*schema.JurisdictionEscrow, error) {
	res := &schema.JurisdictionEscrow{}
	return res, c.getJSON(fmt.Sprintf("/escrow/%s", jurisdiction), res)
}

func (c *Client) GetEvents(cursor int64) ([]schema.LedgerEvent, error) {
	res := make([]schema.LedgerEvent, 0)
	return res, c.getJSON(fmt.Sprintf("/events?cursor=%d", cursor), &res)
}

func (c *Client) postJSON(path string, body interface{}, out interface{}) error {
	req := c.SCli.Post()
	req.AddPath(path)
	if c.apiKey != "" {
		req.SetHeader("X-API-KEY", c.apiKey)
	}
	if body != nil {
		req.JSON(body)
	}
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	if out == nil {
		return nil
	}
	return resp.JSON(out)
}

func (c *Client) getJSON(path string, out interface{}) error {
	req := c.SCli.Get()
	req.AddPath(path)
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	return resp.JSON(out)
}
