package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"dao-governance/internal/app"
	"dao-governance/internal/governance"
	"dao-governance/internal/metrics"
	"dao-governance/internal/ports/http/middleware/auth"
)

type server struct {
	app        *app.App
	httpServer *http.Server
	addr       string
	logger     *zap.Logger
	auth       auth.Middleware
}

func NewServer(logger *zap.Logger, a *app.App, address string) server {
	return server{
		app:    a,
		addr:   address,
		logger: logger,
		auth:   auth.NewMiddleware(logger, a),
	}
}

func (ser server) registerHandlers(router *mux.Router) {

	router.HandleFunc("/health", healthcheck)
	router.Handle("/metrics", metrics.Handler())

	router.HandleFunc("/api/session/challenge", ser.postSessionChallenge).Methods(http.MethodPost)
	router.HandleFunc("/api/session", ser.postSession).Methods(http.MethodPost)

	router.HandleFunc("/api/members", ser.getMembers).Methods(http.MethodGet)
	router.Handle("/api/members", ser.auth.Require(http.HandlerFunc(ser.postMember))).Methods(http.MethodPost)
	router.HandleFunc("/api/members/{address}", ser.getMember).Methods(http.MethodGet)
	router.HandleFunc("/api/members/{address}/votes", ser.getVotingHistory).Methods(http.MethodGet)

	router.HandleFunc("/api/proposals", ser.getProposals).Methods(http.MethodGet)
	router.Handle("/api/proposals", ser.auth.Require(http.HandlerFunc(ser.postProposal))).Methods(http.MethodPost)
	router.HandleFunc("/api/proposals/{proposalID}", ser.getProposal).Methods(http.MethodGet)
	router.Handle("/api/proposals/{proposalID}/votes", ser.auth.Require(http.HandlerFunc(ser.postVote))).Methods(http.MethodPost)
	router.HandleFunc("/api/proposals/{proposalID}/votes/{address}", ser.getHasVoted).Methods(http.MethodGet)
	router.Handle("/api/proposals/{proposalID}/execute", ser.auth.Require(http.HandlerFunc(ser.postExecute))).Methods(http.MethodPost)

	router.HandleFunc("/api/treasury", ser.getTreasury).Methods(http.MethodGet)
	router.HandleFunc("/api/treasury/history", ser.getTreasuryHistory).Methods(http.MethodGet)
	router.Handle("/api/treasury/deposits", ser.auth.Require(http.HandlerFunc(ser.postDeposit))).Methods(http.MethodPost)
	router.Handle("/api/treasury/withdrawals", ser.auth.Require(http.HandlerFunc(ser.postWithdrawal))).Methods(http.MethodPost)

	router.HandleFunc("/api/stats", ser.getStats).Methods(http.MethodGet)
}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("all good here"))
}

// Handler builds the full routing stack; split out from Run so tests can
// mount it on an httptest server.
func (ser server) Handler() http.Handler {
	router := mux.NewRouter()
	ser.registerHandlers(router)

	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})
	return c.Handler(router)
}

func (ser *server) Run() error {
	ser.httpServer = &http.Server{
		Handler: ser.Handler(),
		Addr:    ser.addr,
	}

	ser.logger.Info("http server listening", zap.String("addr", ser.addr))
	return ser.httpServer.ListenAndServe()
}

func (ser server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	response, err := json.Marshal(body)
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		ser.logger.Error("failed to write the response: " + err.Error())
	}
}

func (ser server) badRequest(w http.ResponseWriter, message string) {
	ser.logger.Warn(message)
	ser.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

func (ser server) serverError(w http.ResponseWriter, message string) {
	ser.logger.Error(message)
	w.WriteHeader(http.StatusInternalServerError)
	if _, err := w.Write([]byte(message)); err != nil {
		ser.logger.Error("failed to write a server error message: " + err.Error())
	}
}

// governanceError maps the engine's closed error taxonomy onto stable
// HTTP statuses so the front-end can translate them for the user.
func (ser server) governanceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, governance.ErrNotOwner), errors.Is(err, governance.ErrNotMember):
		status = http.StatusForbidden
	case errors.Is(err, governance.ErrInvalidProposal):
		status = http.StatusNotFound
	case errors.Is(err, governance.ErrAlreadyVoted),
		errors.Is(err, governance.ErrAlreadyExecuted),
		errors.Is(err, governance.ErrAlreadyMember),
		errors.Is(err, governance.ErrVotingEnded),
		errors.Is(err, governance.ErrVotingOngoing),
		errors.Is(err, governance.ErrInsufficientFunds):
		status = http.StatusConflict
	case errors.Is(err, governance.ErrInvalidAddress),
		errors.Is(err, governance.ErrInvalidAmount),
		errors.Is(err, governance.ErrInvalidProposalType),
		errors.Is(err, governance.ErrInvalidVotingPeriod):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrUnknownChallenge),
		errors.Is(err, app.ErrSignerMismatch),
		errors.Is(err, app.ErrInvalidToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		ser.logger.Error(err.Error())
	} else {
		ser.logger.Warn(err.Error())
	}
	ser.writeJSON(w, status, map[string]string{"error": err.Error()})
}
