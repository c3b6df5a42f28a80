package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dao-governance/internal/identity"
)

// Client is the HTTP client daoctl drives the governance API with. It
// opens a fresh signed session on demand and reuses the token for the
// rest of the invocation.
type Client struct {
	baseURL string
	httpc   *http.Client
	keys    identity.UserKeys
	token   string
}

func NewClient(baseURL string, keys identity.UserKeys) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		keys:    keys,
	}
}

type proposalView struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	ShortDesc      string    `json:"shortDesc"`
	DetailedDesc   string    `json:"detailedDesc"`
	Type           string    `json:"type"`
	Proposer       string    `json:"proposer"`
	CreatedAt      time.Time `json:"createdAt"`
	VotingDeadline time.Time `json:"votingDeadline"`
	VotesFor       uint64    `json:"votesFor"`
	VotesAgainst   uint64    `json:"votesAgainst"`
	Executed       bool      `json:"executed"`
	Status         string    `json:"status"`
}

type treasuryView struct {
	Balance string `json:"balance"`
	Inflow  string `json:"inflow"`
	Outflow string `json:"outflow"`
}

type snapshotView struct {
	At      time.Time `json:"at"`
	Balance string    `json:"balance"`
}

type statsView struct {
	TotalProposals   uint64 `json:"totalProposals"`
	ActiveProposals  uint64 `json:"activeProposals"`
	TotalMembers     uint64 `json:"totalMembers"`
	AvgParticipation uint64 `json:"avgParticipation"`
}

type memberView struct {
	Address  string `json:"address"`
	IsMember bool   `json:"isMember"`
	IsOwner  bool   `json:"isOwner"`
}

type membersView struct {
	Owner   string       `json:"owner"`
	Members []memberView `json:"members"`
}

type sessionView struct {
	Token    string `json:"token"`
	Address  string `json:"address"`
	IsOwner  bool   `json:"isOwner"`
	IsMember bool   `json:"isMember"`
}

// connect runs the challenge/response login with the loaded key.
func (c *Client) connect() error {
	if c.token != "" {
		return nil
	}
	if !c.keys.Valid() {
		return errors.New("this command needs a signing key, set DAOCTL_KEY or DAOCTL_KEYFILE")
	}

	address := c.keys.Address().Hex()

	var challengeResp struct {
		Challenge string `json:"challenge"`
	}
	if err := c.post("/api/session/challenge", map[string]string{"address": address}, &challengeResp, false); err != nil {
		return errors.New("failed to request a login challenge: " + err.Error())
	}

	signature, err := c.keys.Sign(challengeResp.Challenge)
	if err != nil {
		return err
	}

	var session sessionView
	if err := c.post("/api/session", map[string]string{
		"address":   address,
		"signature": signature,
	}, &session, false); err != nil {
		return errors.New("failed to open a session: " + err.Error())
	}

	c.token = session.Token
	return nil
}

func (c *Client) Session() (sessionView, error) {
	if err := c.connect(); err != nil {
		return sessionView{}, err
	}
	sctx := sessionView{Address: c.keys.Address().Hex(), Token: c.token}

	var member memberView
	if err := c.get("/api/members/"+sctx.Address, &member); err != nil {
		return sessionView{}, err
	}
	sctx.IsOwner = member.IsOwner
	sctx.IsMember = member.IsMember
	return sctx, nil
}

func (c *Client) AddMember(address string) error {
	return c.authedPost("/api/members", map[string]string{"address": address}, nil)
}

func (c *Client) Member(address string) (memberView, error) {
	var out memberView
	err := c.get("/api/members/"+address, &out)
	return out, err
}

func (c *Client) Members() (membersView, error) {
	var out membersView
	err := c.get("/api/members", &out)
	return out, err
}

func (c *Client) VotingHistory(address string) ([]uint64, error) {
	var out struct {
		ProposalIDs []uint64 `json:"proposalIDs"`
	}
	err := c.get("/api/members/"+address+"/votes", &out)
	return out.ProposalIDs, err
}

type createProposalParams struct {
	Title            string `json:"title"`
	ShortDesc        string `json:"shortDesc"`
	DetailedDesc     string `json:"detailedDesc"`
	Type             uint8  `json:"type"`
	VotingPeriodDays uint32 `json:"votingPeriodDays"`
}

func (c *Client) CreateProposal(params createProposalParams) (uint64, error) {
	var out struct {
		ID uint64 `json:"id"`
	}
	err := c.authedPost("/api/proposals", params, &out)
	return out.ID, err
}

func (c *Client) Proposals() ([]proposalView, error) {
	var out []proposalView
	err := c.get("/api/proposals", &out)
	return out, err
}

func (c *Client) Proposal(id uint64) (proposalView, error) {
	var out proposalView
	err := c.get(fmt.Sprintf("/api/proposals/%d", id), &out)
	return out, err
}

func (c *Client) Vote(id uint64, support bool) error {
	return c.authedPost(fmt.Sprintf("/api/proposals/%d/votes", id), map[string]bool{"support": support}, nil)
}

func (c *Client) Execute(id uint64) error {
	return c.authedPost(fmt.Sprintf("/api/proposals/%d/execute", id), nil, nil)
}

func (c *Client) Treasury() (treasuryView, error) {
	var out treasuryView
	err := c.get("/api/treasury", &out)
	return out, err
}

func (c *Client) TreasuryHistory() ([]snapshotView, error) {
	var out []snapshotView
	err := c.get("/api/treasury/history", &out)
	return out, err
}

func (c *Client) Deposit(amount string) error {
	return c.authedPost("/api/treasury/deposits", map[string]string{"amount": amount}, nil)
}

func (c *Client) Withdraw(amount, recipient string) error {
	return c.authedPost("/api/treasury/withdrawals", map[string]string{
		"amount":    amount,
		"recipient": recipient,
	}, nil)
}

func (c *Client) Stats() (statsView, error) {
	var out statsView
	err := c.get("/api/stats", &out)
	return out, err
}

func (c *Client) authedPost(path string, body, out interface{}) error {
	if err := c.connect(); err != nil {
		return err
	}
	return c.post(path, body, out, true)
}

func (c *Client) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
