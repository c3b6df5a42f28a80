package governance

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"dao-governance/internal/model"
)

type EventKind string

const (
	EventMemberAdded      EventKind = "memberAdded"
	EventProposalCreated  EventKind = "proposalCreated"
	EventVoteCast         EventKind = "voteCast"
	EventProposalExecuted EventKind = "proposalExecuted"
	EventDeposit          EventKind = "deposit"
	EventWithdrawal       EventKind = "withdrawal"
)

// Event is the record of one committed mutation. The engine emits exactly
// one per successful mutation; the sequence number is the engine's total
// mutation count, so a journal replayed in sequence order rebuilds the
// same state. Amounts travel as decimal strings to keep the encoding
// stable across codecs.
type Event struct {
	ID    string    `json:"id"`
	Seq   uint64    `json:"seq"`
	Kind  EventKind `json:"kind"`
	At    time.Time `json:"at"`
	Actor string    `json:"actor"`

	// memberAdded
	Member string `json:"member,omitempty"`

	// proposalCreated
	Proposal *ProposalRecord `json:"proposal,omitempty"`

	// voteCast, proposalExecuted
	ProposalID uint64 `json:"proposalID,omitempty"`
	Support    bool   `json:"support,omitempty"`

	// deposit, withdrawal
	Amount    string `json:"amount,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Balance   string `json:"balance,omitempty"`
}

// ProposalRecord is the journaled form of a created proposal. The deadline
// is stored absolute so a replay long after the fact re-derives the same
// voting window.
type ProposalRecord struct {
	ID             uint64             `json:"id"`
	Title          string             `json:"title"`
	ShortDesc      string             `json:"shortDesc"`
	DetailedDesc   string             `json:"detailedDesc"`
	Type           model.ProposalType `json:"type"`
	Proposer       string             `json:"proposer"`
	CreatedAt      time.Time          `json:"createdAt"`
	VotingDeadline time.Time          `json:"votingDeadline"`
}

func (e *Engine) newEvent(kind EventKind, actor common.Address, at time.Time) Event {
	e.seq++
	return Event{
		ID:    uuid.NewString(),
		Seq:   e.seq,
		Kind:  kind,
		At:    at,
		Actor: actor.Hex(),
	}
}
