package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"dao-governance/internal/config"
	"dao-governance/internal/governance"
	"dao-governance/internal/identity"
	"dao-governance/internal/model"
)

type createProposalRequest struct {
	Title            string `json:"title"`
	ShortDesc        string `json:"shortDesc"`
	DetailedDesc     string `json:"detailedDesc"`
	Type             uint8  `json:"type"`
	VotingPeriodDays uint32 `json:"votingPeriodDays"`
}

type voteRequest struct {
	Support bool `json:"support"`
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

func (ser server) proposalToView(proposal model.Proposal) proposalView {
	return proposalView{
		ID:             proposal.ID,
		Title:          proposal.Title,
		ShortDesc:      proposal.ShortDesc,
		DetailedDesc:   proposal.DetailedDesc,
		Type:           proposal.Type.String(),
		Proposer:       proposal.Proposer.Hex(),
		CreatedAt:      proposal.CreatedAt,
		VotingDeadline: proposal.VotingDeadline,
		VotesFor:       proposal.VotesFor,
		VotesAgainst:   proposal.VotesAgainst,
		Executed:       proposal.Executed,
		Status:         string(proposal.Status(ser.app.Now())),
	}
}

func (ser server) getProposals(w http.ResponseWriter, r *http.Request) {
	proposals := ser.app.ListProposals()

	views := make([]proposalView, len(proposals))
	for i, proposal := range proposals {
		views[i] = ser.proposalToView(proposal)
	}

	ser.writeJSON(w, http.StatusOK, views)
}

func (ser server) getProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := ser.proposalID(w, r)
	if !ok {
		return
	}

	proposal, err := ser.app.GetProposal(proposalID)
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.writeJSON(w, http.StatusOK, ser.proposalToView(proposal))
}

func (ser server) postProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := ser.caller(w, r)
	if !ok {
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the proposal request: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.GetRequestTimeout())
	defer cancel()

	id, err := ser.app.CreateProposal(ctx, caller.Address, governance.ProposalDraft{
		Title:            req.Title,
		ShortDesc:        req.ShortDesc,
		DetailedDesc:     req.DetailedDesc,
		Type:             model.ProposalType(req.Type),
		VotingPeriodDays: req.VotingPeriodDays,
	})
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.logger.Info("proposal created over http",
		zap.Uint64("proposalID", id),
		zap.String("proposer", caller.Address.Hex()))

	ser.writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (ser server) postVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := ser.caller(w, r)
	if !ok {
		return
	}

	proposalID, ok := ser.proposalID(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the vote request: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.GetRequestTimeout())
	defer cancel()

	if err := ser.app.Vote(ctx, caller.Address, proposalID, req.Support); err != nil {
		ser.governanceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (ser server) postExecute(w http.ResponseWriter, r *http.Request) {
	caller, ok := ser.caller(w, r)
	if !ok {
		return
	}

	proposalID, ok := ser.proposalID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.GetRequestTimeout())
	defer cancel()

	if err := ser.app.ExecuteProposal(ctx, caller.Address, proposalID); err != nil {
		ser.governanceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (ser server) getHasVoted(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := ser.proposalID(w, r)
	if !ok {
		return
	}

	address, err := identity.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.writeJSON(w, http.StatusOK, map[string]bool{
		"hasVoted": ser.app.HasVoted(proposalID, address),
	})
}

func (ser server) proposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := mux.Vars(r)["proposalID"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		ser.badRequest(w, "proposal id must be a non-negative integer: "+raw)
		return 0, false
	}
	return id, true
}
