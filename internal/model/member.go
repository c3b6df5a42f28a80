package model

import "github.com/ethereum/go-ethereum/common"

type Member struct {
	Address common.Address
	IsOwner bool
}

// SessionContext carries the caller identity resolved once per session and
// attached to every request: the connected address plus its cached
// owner/member flags. The engine still re-checks authority on every
// mutation, so stale flags can never grant access.
type SessionContext struct {
	Address  common.Address
	IsOwner  bool
	IsMember bool
}

// DAOStats is the aggregate the dashboard renders.
type DAOStats struct {
	TotalProposals  uint64
	ActiveProposals uint64
	TotalMembers    uint64
	// AvgParticipation is the share of members that have cast at least one
	// vote on any proposal, as an integer percentage 0..100.
	AvgParticipation uint64
}
