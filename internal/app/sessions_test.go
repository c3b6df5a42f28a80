package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dao-governance/internal/app"
	"dao-governance/internal/governance"
	"dao-governance/internal/identity"
	"dao-governance/internal/journal"
)

func newTestApp(t *testing.T) (*app.App, identity.UserKeys, *journal.Memory) {
	t.Helper()

	ownerKeys, err := identity.GenerateKeys()
	require.NoError(t, err)

	engine, err := governance.NewEngine(zap.NewExample(), governance.Genesis{
		Owner: ownerKeys.Address(),
	})
	require.NoError(t, err)

	mem := journal.NewMemory()
	a := app.NewApp(zap.NewExample(), engine, mem, nil, app.AuthParams{
		TokenSecret:  []byte("test-secret"),
		TokenTTL:     time.Hour,
		ChallengeTTL: time.Minute,
	})
	return a, ownerKeys, mem
}

func TestSessionFlow(t *testing.T) {
	a, ownerKeys, _ := newTestApp(t)
	address := ownerKeys.Address().Hex()

	challenge, err := a.SessionChallenge(address)
	require.NoError(t, err)
	assert.Contains(t, challenge, address)

	signature, err := ownerKeys.Sign(challenge)
	require.NoError(t, err)

	token, sctx, err := a.Connect(address, signature)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, sctx.IsOwner)
	assert.True(t, sctx.IsMember)

	verified, err := a.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, sctx, verified)

	// challenges are single-use
	_, _, err = a.Connect(address, signature)
	assert.ErrorIs(t, err, app.ErrUnknownChallenge)
}

func TestConnectRejectsWrongSigner(t *testing.T) {
	a, ownerKeys, _ := newTestApp(t)
	address := ownerKeys.Address().Hex()

	challenge, err := a.SessionChallenge(address)
	require.NoError(t, err)

	intruder, err := identity.GenerateKeys()
	require.NoError(t, err)
	signature, err := intruder.Sign(challenge)
	require.NoError(t, err)

	_, _, err = a.Connect(address, signature)
	assert.ErrorIs(t, err, app.ErrSignerMismatch)
}

func TestConnectWithoutChallenge(t *testing.T) {
	a, ownerKeys, _ := newTestApp(t)

	signature, err := ownerKeys.Sign("anything")
	require.NoError(t, err)

	_, _, err = a.Connect(ownerKeys.Address().Hex(), signature)
	assert.ErrorIs(t, err, app.ErrUnknownChallenge)
}

func TestVerifySessionRejectsGarbage(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, err := a.VerifySession("not-a-token")
	assert.ErrorIs(t, err, app.ErrInvalidToken)

	_, err = a.VerifySession("")
	assert.ErrorIs(t, err, app.ErrInvalidToken)
}

func TestSessionFlagsForNonMember(t *testing.T) {
	a, _, _ := newTestApp(t)

	visitor, err := identity.GenerateKeys()
	require.NoError(t, err)
	address := visitor.Address().Hex()

	challenge, err := a.SessionChallenge(address)
	require.NoError(t, err)
	signature, err := visitor.Sign(challenge)
	require.NoError(t, err)

	_, sctx, err := a.Connect(address, signature)
	require.NoError(t, err)
	assert.False(t, sctx.IsOwner)
	assert.False(t, sctx.IsMember)
}

func TestMutationsAreJournaled(t *testing.T) {
	a, ownerKeys, mem := newTestApp(t)
	ctx := context.Background()
	ownerAddr := ownerKeys.Address()

	memberKeys, err := identity.GenerateKeys()
	require.NoError(t, err)

	require.NoError(t, a.AddMember(ctx, ownerAddr, memberKeys.Address()))

	id, err := a.CreateProposal(ctx, ownerAddr, governance.ProposalDraft{Title: "T", VotingPeriodDays: 1})
	require.NoError(t, err)
	require.NoError(t, a.Vote(ctx, memberKeys.Address(), id, true))

	events, err := mem.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, governance.EventMemberAdded, events[0].Kind)
	assert.Equal(t, governance.EventProposalCreated, events[1].Kind)
	assert.Equal(t, governance.EventVoteCast, events[2].Kind)

	// failed mutations leave no journal entry
	err = a.Vote(ctx, memberKeys.Address(), id, true)
	assert.ErrorIs(t, err, governance.ErrAlreadyVoted)

	events, err = mem.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
