package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type ProposalType uint8

const (
	ProposalTypeGeneral ProposalType = iota
	ProposalTypeFunding
	ProposalTypeGovernance
)

func (t ProposalType) IsValid() bool {
	return t <= ProposalTypeGovernance
}

func (t ProposalType) String() string {
	switch t {
	case ProposalTypeGeneral:
		return "general"
	case ProposalTypeFunding:
		return "funding"
	case ProposalTypeGovernance:
		return "governance"
	}
	return "unknown"
}

type ProposalStatus string

const (
	StatusActive            ProposalStatus = "active"
	StatusReadyForExecution ProposalStatus = "readyForExecution"
	StatusExecuted          ProposalStatus = "executed"
)

type Proposal struct {
	ID           uint64
	Title        string
	ShortDesc    string
	DetailedDesc string
	Type         ProposalType
	Proposer     common.Address
	CreatedAt    time.Time

	VotingDeadline time.Time
	VotesFor       uint64
	VotesAgainst   uint64
	Executed       bool
}

// Status is derived from the stored state on every read, never persisted.
func (p Proposal) Status(now time.Time) ProposalStatus {
	if p.Executed {
		return StatusExecuted
	}
	if now.After(p.VotingDeadline) {
		return StatusReadyForExecution
	}
	return StatusActive
}

// VotingOpen reports whether a vote cast at the given instant is still
// accepted. The deadline instant itself is inclusive.
func (p Proposal) VotingOpen(now time.Time) bool {
	return !p.Executed && !now.After(p.VotingDeadline)
}
