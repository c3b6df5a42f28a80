package http

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dao-governance/internal/config"
	"dao-governance/internal/identity"
)

type depositRequest struct {
	Amount string `json:"amount"`
}

type withdrawRequest struct {
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
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

func (ser server) getTreasury(w http.ResponseWriter, r *http.Request) {
	info := ser.app.TreasuryInfo()
	ser.writeJSON(w, http.StatusOK, treasuryView{
		Balance: info.Balance.String(),
		Inflow:  info.Inflow.String(),
		Outflow: info.Outflow.String(),
	})
}

func (ser server) getTreasuryHistory(w http.ResponseWriter, r *http.Request) {
	history := ser.app.TreasuryHistory()

	views := make([]snapshotView, len(history))
	for i, snapshot := range history {
		views[i] = snapshotView{
			At:      snapshot.At,
			Balance: snapshot.Balance.String(),
		}
	}

	ser.writeJSON(w, http.StatusOK, views)
}

func (ser server) postDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := ser.caller(w, r)
	if !ok {
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the deposit request: "+err.Error())
		return
	}

	amount, ok := ser.parseAmount(w, req.Amount)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.GetRequestTimeout())
	defer cancel()

	if err := ser.app.Deposit(ctx, caller.Address, amount); err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.logger.Info("deposit accepted",
		zap.String("from", caller.Address.Hex()),
		zap.String("amount", amount.String()))

	w.WriteHeader(http.StatusCreated)
}

func (ser server) postWithdrawal(w http.ResponseWriter, r *http.Request) {
	caller, ok := ser.caller(w, r)
	if !ok {
		return
	}

	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "failed to parse the withdrawal request: "+err.Error())
		return
	}

	amount, ok := ser.parseAmount(w, req.Amount)
	if !ok {
		return
	}

	recipient, err := identity.ParseAddress(req.Recipient)
	if err != nil {
		ser.governanceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.GetRequestTimeout())
	defer cancel()

	if err := ser.app.Withdraw(ctx, caller.Address, amount, recipient); err != nil {
		ser.governanceError(w, err)
		return
	}

	ser.logger.Info("withdrawal accepted",
		zap.String("recipient", recipient.Hex()),
		zap.String("amount", amount.String()))

	w.WriteHeader(http.StatusCreated)
}

// parseAmount reads a smallest-unit decimal integer; the display layer
// owns any 10^18 conversion.
func (ser server) parseAmount(w http.ResponseWriter, raw string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		ser.badRequest(w, "amount must be a decimal integer in the smallest unit: "+raw)
		return nil, false
	}
	return amount, true
}
