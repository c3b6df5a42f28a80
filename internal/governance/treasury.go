package governance

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dao-governance/internal/model"
)

// Deposit credits the treasury. Anyone may deposit; the amount must be
// positive.
func (e *Engine) Deposit(from common.Address, amount *big.Int) (Event, error) {
	if amount == nil || amount.Sign() <= 0 {
		return Event{}, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.applyDepositLocked(amount, now)

	event := e.newEvent(EventDeposit, from, now)
	event.Amount = amount.String()
	event.Balance = e.balance.String()

	e.logger.Info("treasury deposit",
		zap.String("from", from.Hex()),
		zap.String("amount", amount.String()),
		zap.String("balance", e.balance.String()))

	return event, nil
}

// Withdraw debits the treasury and hands the amount to the transfer hook.
// Owner only; the balance can never go negative, and a failed transfer
// rolls the debit back so the mutation fails atomically.
func (e *Engine) Withdraw(caller common.Address, amount *big.Int, recipient common.Address) (Event, error) {
	if amount == nil || amount.Sign() <= 0 {
		return Event{}, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return Event{}, ErrNotOwner
	}
	if recipient == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}
	if e.balance.Cmp(amount) < 0 {
		return Event{}, ErrInsufficientFunds
	}

	now := e.now()
	e.applyWithdrawalLocked(amount, now)

	if e.transfer != nil {
		if err := e.transfer(recipient, new(big.Int).Set(amount)); err != nil {
			e.rollbackWithdrawalLocked(amount)
			return Event{}, errors.New("transfer to recipient failed: " + err.Error())
		}
	}

	event := e.newEvent(EventWithdrawal, caller, now)
	event.Amount = amount.String()
	event.Recipient = recipient.Hex()
	event.Balance = e.balance.String()

	e.logger.Info("treasury withdrawal",
		zap.String("recipient", recipient.Hex()),
		zap.String("amount", amount.String()),
		zap.String("balance", e.balance.String()))

	return event, nil
}

func (e *Engine) applyDepositLocked(amount *big.Int, at time.Time) {
	e.balance.Add(e.balance, amount)
	e.inflow.Add(e.inflow, amount)
	e.appendSnapshotLocked(at)
}

func (e *Engine) applyWithdrawalLocked(amount *big.Int, at time.Time) {
	e.balance.Sub(e.balance, amount)
	e.outflow.Add(e.outflow, amount)
	e.appendSnapshotLocked(at)
}

func (e *Engine) rollbackWithdrawalLocked(amount *big.Int) {
	e.balance.Add(e.balance, amount)
	e.outflow.Sub(e.outflow, amount)
	e.snapshots = e.snapshots[:len(e.snapshots)-1]
}

func (e *Engine) appendSnapshotLocked(at time.Time) {
	e.snapshots = append(e.snapshots, model.TreasurySnapshot{
		At:      at,
		Balance: new(big.Int).Set(e.balance),
	})
}

// TreasuryInfo returns the current balance and the cumulative flows.
func (e *Engine) TreasuryInfo() model.TreasuryInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return model.TreasuryInfo{
		Balance: new(big.Int).Set(e.balance),
		Inflow:  new(big.Int).Set(e.inflow),
		Outflow: new(big.Int).Set(e.outflow),
	}
}

// TreasuryHistory returns the balance snapshots, oldest first.
func (e *Engine) TreasuryHistory() []model.TreasurySnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]model.TreasurySnapshot, len(e.snapshots))
	for i, snapshot := range e.snapshots {
		out[i] = model.TreasurySnapshot{
			At:      snapshot.At,
			Balance: new(big.Int).Set(snapshot.Balance),
		}
	}
	return out
}
