package http

import (
	"encoding/json"
	"net/http"

	"dao-governance/internal/model"
	"dao-governance/internal/ports/http/middleware/auth"
)

type challengeRequest struct {
	Address string `json:"address"`
}

type connectRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Address  string `json:"address"`
	IsOwner  bool   `json:"isOwner"`
	IsMember bool   `json:"isMember"`
}

func (ser server) postSessionChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the challenge request: "+err.Error())
		return
	}

	challenge, err := ser.app.SessionChallenge(req.Address)
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge})
}

func (ser server) postSession(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the connect request: "+err.Error())
		return
	}

	token, sctx, err := ser.app.Connect(req.Address, req.Signature)
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.writeJSON(w, http.StatusOK, sessionResponse{
		Token:    token,
		Address:  sctx.Address.Hex(),
		IsOwner:  sctx.IsOwner,
		IsMember: sctx.IsMember,
	})
}

// caller extracts the authenticated session context placed by the auth
// middleware.
func (ser server) caller(w http.ResponseWriter, r *http.Request) (model.SessionContext, bool) {
	sctx, ok := auth.CallerFrom(r.Context())
	if !ok {
		ser.serverError(w, "caller context missing on an authenticated route")
	}
	return sctx, ok
}
