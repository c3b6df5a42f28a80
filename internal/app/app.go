package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dao-governance/internal/governance"
	"dao-governance/internal/journal"
	"dao-governance/internal/metrics"
	"dao-governance/internal/model"
)

// EventSink receives every committed event for fan-out to subscribers.
type EventSink interface {
	Publish(event governance.Event) error
}

// App wires the governance engine to its surroundings: the durable event
// journal, the event broadcast, session issuing and metrics. Handlers talk
// to App, never to the engine directly.
type App struct {
	logger  *zap.Logger
	engine  *governance.Engine
	journal journal.Journal
	sink    EventSink

	sessions sessionIssuer
}

func NewApp(logger *zap.Logger, engine *governance.Engine, j journal.Journal, sink EventSink, auth AuthParams) *App {
	return &App{
		logger:   logger,
		engine:   engine,
		journal:  j,
		sink:     sink,
		sessions: newSessionIssuer(auth),
	}
}

// commit records a mutation the engine has already applied. The engine is
// the source of truth, so journal or broadcast trouble is reported loudly
// but never unwinds the committed state.
func (a *App) commit(ctx context.Context, event governance.Event) {
	if a.journal != nil {
		if err := a.journal.Append(ctx, event); err != nil {
			a.logger.Error("failed to journal a committed event",
				zap.String("eventID", event.ID),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}
	}
	if a.sink != nil {
		if err := a.sink.Publish(event); err != nil {
			a.logger.Warn("failed to publish a committed event",
				zap.String("eventID", event.ID),
				zap.Error(err))
		}
	}

	metrics.SetMembers(uint64(len(a.engine.Members())))
	metrics.SetProposals(a.engine.ProposalCount())
	metrics.SetTreasuryBalance(a.engine.TreasuryInfo().Balance)
}

func (a *App) AddMember(ctx context.Context, caller, address common.Address) error {
	event, err := a.engine.AddMember(caller, address)
	metrics.ObserveMutation("addMember", err)
	if err != nil {
		return err
	}
	a.commit(ctx, event)
	return nil
}

func (a *App) CreateProposal(ctx context.Context, caller common.Address, draft governance.ProposalDraft) (uint64, error) {
	event, id, err := a.engine.CreateProposal(caller, draft)
	metrics.ObserveMutation("createProposal", err)
	if err != nil {
		return 0, err
	}
	a.commit(ctx, event)
	return id, nil
}

func (a *App) Vote(ctx context.Context, caller common.Address, proposalID uint64, support bool) error {
	event, err := a.engine.Vote(caller, proposalID, support)
	metrics.ObserveMutation("vote", err)
	if err != nil {
		return err
	}
	a.commit(ctx, event)
	return nil
}

func (a *App) ExecuteProposal(ctx context.Context, caller common.Address, proposalID uint64) error {
	event, err := a.engine.Execute(caller, proposalID)
	metrics.ObserveMutation("executeProposal", err)
	if err != nil {
		return err
	}
	a.commit(ctx, event)
	return nil
}

func (a *App) Deposit(ctx context.Context, from common.Address, amount *big.Int) error {
	event, err := a.engine.Deposit(from, amount)
	metrics.ObserveMutation("deposit", err)
	if err != nil {
		return err
	}
	a.commit(ctx, event)
	return nil
}

func (a *App) Withdraw(ctx context.Context, caller common.Address, amount *big.Int, recipient common.Address) error {
	event, err := a.engine.Withdraw(caller, amount, recipient)
	metrics.ObserveMutation("withdraw", err)
	if err != nil {
		return err
	}
	a.commit(ctx, event)
	return nil
}

func (a *App) GetProposal(proposalID uint64) (model.Proposal, error) {
	return a.engine.GetProposal(proposalID)
}

func (a *App) ListProposals() []model.Proposal {
	return a.engine.ListProposals()
}

func (a *App) HasVoted(proposalID uint64, address common.Address) bool {
	return a.engine.HasVoted(proposalID, address)
}

func (a *App) VotingHistory(address common.Address) []uint64 {
	return a.engine.VotingHistory(address)
}

func (a *App) IsMember(address common.Address) bool {
	return a.engine.IsMember(address)
}

func (a *App) Members() []common.Address {
	return a.engine.Members()
}

func (a *App) Owner() common.Address {
	return a.engine.Owner()
}

func (a *App) TreasuryInfo() model.TreasuryInfo {
	return a.engine.TreasuryInfo()
}

func (a *App) TreasuryHistory() []model.TreasurySnapshot {
	return a.engine.TreasuryHistory()
}

func (a *App) Stats() model.DAOStats {
	return a.engine.Stats()
}

// Now exposes the engine's clock so read views derive proposal status
// against the same time source the engine enforces deadlines with.
func (a *App) Now() time.Time {
	return a.engine.Clock()()
}
