package governance

import "errors"

// Caller errors surfaced synchronously by the engine. A failing mutation
// never leaves partial state behind.
var (
	ErrNotOwner            = errors.New("not owner")
	ErrNotMember           = errors.New("not a DAO member")
	ErrAlreadyMember       = errors.New("already a member")
	ErrInvalidProposal     = errors.New("invalid proposal")
	ErrInvalidProposalType = errors.New("invalid proposal type")
	ErrInvalidVotingPeriod = errors.New("invalid voting period")
	ErrVotingEnded         = errors.New("voting ended")
	ErrVotingOngoing       = errors.New("voting ongoing")
	ErrAlreadyVoted        = errors.New("already voted")
	ErrAlreadyExecuted     = errors.New("already executed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidAmount       = errors.New("invalid amount")
)
