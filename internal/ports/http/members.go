package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"dao-governance/internal/config"
	"dao-governance/internal/identity"
)

type addMemberRequest struct {
	Address string `json:"address"`
}

type memberView struct {
	Address  string `json:"address"`
	IsMember bool   `json:"isMember"`
	IsOwner  bool   `json:"isOwner"`
}

func (ser server) getMembers(w http.ResponseWriter, r *http.Request) {
	members := ser.app.Members()
	owner := ser.app.Owner()

	views := make([]memberView, len(members))
	for i, member := range members {
		views[i] = memberView{
			Address:  member.Hex(),
			IsMember: true,
			IsOwner:  member == owner,
		}
	}

	ser.writeJSON(w, http.StatusOK, map[string]interface{}{
		"owner":   owner.Hex(),
		"members": views,
	})
}

func (ser server) postMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := ser.caller(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the add member request: "+err.Error())
		return
	}

	address, err := identity.ParseAddress(req.Address)
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.GetRequestTimeout())
	defer cancel()

	if err := ser.app.AddMember(ctx, caller.Address, address); err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.logger.Info("member added over http", zap.String("address", address.Hex()), zap.String("caller", caller.Address.Hex()))
	w.WriteHeader(http.StatusCreated)
}

func (ser server) getMember(w http.ResponseWriter, r *http.Request) {
	address, err := identity.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.writeJSON(w, http.StatusOK, memberView{
		Address:  address.Hex(),
		IsMember: ser.app.IsMember(address),
		IsOwner:  ser.app.Owner() == address,
	})
}

func (ser server) getVotingHistory(w http.ResponseWriter, r *http.Request) {
	address, err := identity.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	history := ser.app.VotingHistory(address)
	if history == nil {
		history = []uint64{}
	}

	ser.writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":     address.Hex(),
		"proposalIDs": history,
	})
}
