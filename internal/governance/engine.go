package governance

import (
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dao-governance/internal/model"
)

const (
	secondsPerDay = 86400

	// maxVotingPeriodDays keeps the deadline arithmetic far away from the
	// int64 nanosecond range of time.Duration.
	maxVotingPeriodDays = 36500
)

// TransferFunc delivers a withdrawn amount to the recipient. A returned
// error rolls the whole withdrawal back.
type TransferFunc func(recipient common.Address, amount *big.Int) error

// Genesis is the initial state the engine boots from: the single immutable
// owner plus any pre-authorized members. The owner is always a member.
type Genesis struct {
	Owner          common.Address
	Members        []common.Address
	InitialBalance *big.Int
}

// Engine is the single source of truth for membership, proposals, votes
// and the treasury. All mutations are serialized behind one mutex and
// either commit fully or fail without touching state; reads take a
// consistent snapshot under the read lock.
type Engine struct {
	mu     sync.RWMutex
	logger *zap.Logger

	owner      common.Address
	members    map[common.Address]struct{}
	memberList []common.Address

	proposals []model.Proposal
	votes     map[uint64]map[common.Address]bool
	history   map[common.Address][]uint64

	balance   *big.Int
	inflow    *big.Int
	outflow   *big.Int
	snapshots []model.TreasurySnapshot

	seq      uint64
	now      func() time.Time
	transfer TransferFunc
}

type Option func(*Engine)

// WithClock replaces the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTransfer installs the hook that moves withdrawn funds to the
// recipient.
func WithTransfer(transfer TransferFunc) Option {
	return func(e *Engine) { e.transfer = transfer }
}

func NewEngine(logger *zap.Logger, genesis Genesis, opts ...Option) (*Engine, error) {
	if genesis.Owner == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	e := &Engine{
		logger:  logger,
		owner:   genesis.Owner,
		members: make(map[common.Address]struct{}),
		votes:   make(map[uint64]map[common.Address]bool),
		history: make(map[common.Address][]uint64),
		balance: big.NewInt(0),
		inflow:  big.NewInt(0),
		outflow: big.NewInt(0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.addMemberLocked(genesis.Owner)
	for _, member := range genesis.Members {
		if member == (common.Address{}) {
			return nil, ErrInvalidAddress
		}
		if _, ok := e.members[member]; !ok {
			e.addMemberLocked(member)
		}
	}

	if genesis.InitialBalance != nil {
		if genesis.InitialBalance.Sign() < 0 {
			return nil, ErrInvalidAmount
		}
		e.balance.Set(genesis.InitialBalance)
	}

	logger.Info("governance engine initialized",
		zap.String("owner", genesis.Owner.Hex()),
		zap.Int("members", len(e.memberList)),
		zap.String("balance", e.balance.String()))

	return e, nil
}

func (e *Engine) addMemberLocked(address common.Address) {
	e.members[address] = struct{}{}
	e.memberList = append(e.memberList, address)
}

// AddMember authorizes a new address to propose and vote. Owner only;
// membership is append-only, there is no removal.
func (e *Engine) AddMember(caller, address common.Address) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return Event{}, ErrNotOwner
	}
	if address == (common.Address{}) {
		return Event{}, ErrInvalidAddress
	}
	if _, ok := e.members[address]; ok {
		return Event{}, ErrAlreadyMember
	}

	e.addMemberLocked(address)

	event := e.newEvent(EventMemberAdded, caller, e.now())
	event.Member = address.Hex()

	e.logger.Info("member added", zap.String("address", address.Hex()), zap.Int("members", len(e.memberList)))
	return event, nil
}

// ProposalDraft carries the caller-supplied fields of a new proposal.
type ProposalDraft struct {
	Title            string
	ShortDesc        string
	DetailedDesc     string
	Type             model.ProposalType
	VotingPeriodDays uint32
}

func (d ProposalDraft) Validate() error {
	if !d.Type.IsValid() {
		return ErrInvalidProposalType
	}
	if d.VotingPeriodDays > maxVotingPeriodDays {
		return ErrInvalidVotingPeriod
	}
	return nil
}

// CreateProposal appends a new proposal and returns its id. Members only.
// The voting deadline is absolute: now + votingPeriodDays whole days, so a
// zero-day period closes at the creation instant.
func (e *Engine) CreateProposal(caller common.Address, draft ProposalDraft) (Event, uint64, error) {
	if err := draft.Validate(); err != nil {
		return Event{}, 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.members[caller]; !ok {
		return Event{}, 0, ErrNotMember
	}

	now := e.now()
	proposal := model.Proposal{
		ID:             uint64(len(e.proposals)),
		Title:          draft.Title,
		ShortDesc:      draft.ShortDesc,
		DetailedDesc:   draft.DetailedDesc,
		Type:           draft.Type,
		Proposer:       caller,
		CreatedAt:      now,
		VotingDeadline: now.Add(time.Duration(draft.VotingPeriodDays) * secondsPerDay * time.Second),
	}
	e.proposals = append(e.proposals, proposal)
	e.votes[proposal.ID] = make(map[common.Address]bool)

	event := e.newEvent(EventProposalCreated, caller, now)
	event.Proposal = &ProposalRecord{
		ID:             proposal.ID,
		Title:          proposal.Title,
		ShortDesc:      proposal.ShortDesc,
		DetailedDesc:   proposal.DetailedDesc,
		Type:           proposal.Type,
		Proposer:       caller.Hex(),
		CreatedAt:      proposal.CreatedAt,
		VotingDeadline: proposal.VotingDeadline,
	}

	e.logger.Info("proposal created",
		zap.Uint64("proposalID", proposal.ID),
		zap.String("title", proposal.Title),
		zap.String("proposer", caller.Hex()),
		zap.Time("deadline", proposal.VotingDeadline))

	return event, proposal.ID, nil
}

// Vote records one vote per member per proposal. The vote record is
// immutable once written: a second attempt fails with ErrAlreadyVoted and
// leaves the tallies untouched.
func (e *Engine) Vote(caller common.Address, proposalID uint64, support bool) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.members[caller]; !ok {
		return Event{}, ErrNotMember
	}
	if proposalID >= uint64(len(e.proposals)) {
		return Event{}, ErrInvalidProposal
	}

	now := e.now()
	proposal := &e.proposals[proposalID]
	if now.After(proposal.VotingDeadline) {
		return Event{}, ErrVotingEnded
	}
	if _, ok := e.votes[proposalID][caller]; ok {
		return Event{}, ErrAlreadyVoted
	}

	e.votes[proposalID][caller] = support
	if support {
		proposal.VotesFor++
	} else {
		proposal.VotesAgainst++
	}
	e.history[caller] = append(e.history[caller], proposalID)

	event := e.newEvent(EventVoteCast, caller, now)
	event.ProposalID = proposalID
	event.Support = support

	e.logger.Info("vote cast",
		zap.Uint64("proposalID", proposalID),
		zap.String("voter", caller.Hex()),
		zap.Bool("support", support),
		zap.Uint64("votesFor", proposal.VotesFor),
		zap.Uint64("votesAgainst", proposal.VotesAgainst))

	return event, nil
}

// Execute marks a proposal executed. Owner only, after the deadline, at
// most once. Beyond flipping the flag the engine attaches no further
// effect to execution.
func (e *Engine) Execute(caller common.Address, proposalID uint64) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return Event{}, ErrNotOwner
	}
	if proposalID >= uint64(len(e.proposals)) {
		return Event{}, ErrInvalidProposal
	}

	now := e.now()
	proposal := &e.proposals[proposalID]
	if !now.After(proposal.VotingDeadline) {
		return Event{}, ErrVotingOngoing
	}
	if proposal.Executed {
		return Event{}, ErrAlreadyExecuted
	}

	proposal.Executed = true

	event := e.newEvent(EventProposalExecuted, caller, now)
	event.ProposalID = proposalID

	e.logger.Info("proposal executed", zap.Uint64("proposalID", proposalID))
	return event, nil
}

// GetProposal returns a copy of the proposal state.
func (e *Engine) GetProposal(proposalID uint64) (model.Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if proposalID >= uint64(len(e.proposals)) {
		return model.Proposal{}, ErrInvalidProposal
	}
	return e.proposals[proposalID], nil
}

// ListProposals returns copies of all proposals in creation order.
func (e *Engine) ListProposals() []model.Proposal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]model.Proposal, len(e.proposals))
	copy(out, e.proposals)
	return out
}

func (e *Engine) ProposalCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.proposals))
}

// HasVoted reports whether the address has a vote record for the proposal.
// Unknown proposal ids simply report false, matching a mapping lookup.
func (e *Engine) HasVoted(proposalID uint64, address common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, ok := e.votes[proposalID][address]
	return ok
}

// VotingHistory returns the proposal ids the address has voted on, in the
// order the votes were cast.
func (e *Engine) VotingHistory(address common.Address) []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	history := e.history[address]
	out := make([]uint64, len(history))
	copy(out, history)
	return out
}

func (e *Engine) IsMember(address common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, ok := e.members[address]
	return ok
}

func (e *Engine) IsOwner(address common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return address == e.owner
}

// Clock returns the engine's time source.
func (e *Engine) Clock() func() time.Time {
	return e.now
}

func (e *Engine) Owner() common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.owner
}

// Members returns all member addresses in the order they were added; the
// owner is always first.
func (e *Engine) Members() []common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]common.Address, len(e.memberList))
	copy(out, e.memberList)
	return out
}

// SessionContext resolves the owner/member flags for a connecting address.
func (e *Engine) SessionContext(address common.Address) model.SessionContext {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, isMember := e.members[address]
	return model.SessionContext{
		Address:  address,
		IsOwner:  address == e.owner,
		IsMember: isMember,
	}
}

// Stats aggregates the dashboard numbers. Average participation is the
// share of members with at least one vote on any proposal, as an integer
// percentage.
func (e *Engine) Stats() model.DAOStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	stats := model.DAOStats{
		TotalProposals: uint64(len(e.proposals)),
		TotalMembers:   uint64(len(e.memberList)),
	}
	for _, proposal := range e.proposals {
		if proposal.Status(now) == model.StatusActive {
			stats.ActiveProposals++
		}
	}

	var participated uint64
	for _, member := range e.memberList {
		if len(e.history[member]) > 0 {
			participated++
		}
	}
	if stats.TotalMembers > 0 {
		stats.AvgParticipation = participated * 100 / stats.TotalMembers
	}

	return stats
}

// Restore replays a committed event stream into a freshly constructed
// engine. Events were valid when journaled, so they are applied without
// re-validation; time-dependent checks use the journaled timestamps, not
// the current clock.
func (e *Engine) Restore(events []Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.proposals) > 0 || e.seq > 0 {
		return errors.New("restore requires a fresh engine")
	}

	for _, event := range events {
		if err := e.applyRestored(event); err != nil {
			return errors.New("replaying event " + event.ID + ": " + err.Error())
		}
		e.seq = event.Seq
	}

	e.logger.Info("state restored from journal",
		zap.Int("events", len(events)),
		zap.Int("proposals", len(e.proposals)),
		zap.Int("members", len(e.memberList)),
		zap.String("balance", e.balance.String()))

	return nil
}

func (e *Engine) applyRestored(event Event) error {
	switch event.Kind {
	case EventMemberAdded:
		address := common.HexToAddress(event.Member)
		if _, ok := e.members[address]; !ok {
			e.addMemberLocked(address)
		}

	case EventProposalCreated:
		record := event.Proposal
		if record == nil {
			return errors.New("proposalCreated event without proposal record")
		}
		if record.ID != uint64(len(e.proposals)) {
			return errors.New("proposal id out of sequence")
		}
		e.proposals = append(e.proposals, model.Proposal{
			ID:             record.ID,
			Title:          record.Title,
			ShortDesc:      record.ShortDesc,
			DetailedDesc:   record.DetailedDesc,
			Type:           record.Type,
			Proposer:       common.HexToAddress(record.Proposer),
			CreatedAt:      record.CreatedAt,
			VotingDeadline: record.VotingDeadline,
		})
		e.votes[record.ID] = make(map[common.Address]bool)

	case EventVoteCast:
		if event.ProposalID >= uint64(len(e.proposals)) {
			return ErrInvalidProposal
		}
		voter := common.HexToAddress(event.Actor)
		if _, ok := e.votes[event.ProposalID][voter]; ok {
			return ErrAlreadyVoted
		}
		e.votes[event.ProposalID][voter] = event.Support
		if event.Support {
			e.proposals[event.ProposalID].VotesFor++
		} else {
			e.proposals[event.ProposalID].VotesAgainst++
		}
		e.history[voter] = append(e.history[voter], event.ProposalID)

	case EventProposalExecuted:
		if event.ProposalID >= uint64(len(e.proposals)) {
			return ErrInvalidProposal
		}
		e.proposals[event.ProposalID].Executed = true

	case EventDeposit:
		amount, ok := new(big.Int).SetString(event.Amount, 10)
		if !ok {
			return errors.New("malformed deposit amount: " + event.Amount)
		}
		e.applyDepositLocked(amount, event.At)

	case EventWithdrawal:
		amount, ok := new(big.Int).SetString(event.Amount, 10)
		if !ok {
			return errors.New("malformed withdrawal amount: " + event.Amount)
		}
		if e.balance.Cmp(amount) < 0 {
			return ErrInsufficientFunds
		}
		e.applyWithdrawalLocked(amount, event.At)

	default:
		return errors.New("unknown event kind: " + string(event.Kind))
	}

	return nil
}
