package expiry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/engine"
	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

type fakePublisher struct{ published []events.BetLifecycle }

func (f *fakePublisher) PublishBetLifecycle(_ context.Context, e events.BetLifecycle) error {
	f.published = append(f.published, e)
	return nil
}

func TestSweepRefundsExpiredOpenBets(t *testing.T) {
	ml := engine.NewMemoryLedger()
	ml.Seed("alice", 10_000)
	eng, err := engine.New(zap.NewNop(), ml, engine.Config{
		Owner:         "house",
		EscrowAccount: "escrow-pool",
		FeeRateBps:    250,
	})
	require.NoError(t, err)

	ctx := context.Background()
	id, err := eng.Create(ctx, "alice", engine.CreateParams{
		Description: "chove amanhã",
		StakeCents:  1_000,
		CreatorSide: true,
		Duration:    3,
	})
	require.NoError(t, err)

	publ := &fakePublisher{}
	s := &Sweeper{Log: zap.NewNop(), Engine: eng, Interval: time.Second, Publ: publ}

	// ainda dentro do prazo: nada acontece
	s.sweep(ctx)
	status, _ := eng.GetBetStatus(id)
	assert.Equal(t, engine.StatusOpen, status)
	assert.Empty(t, publ.published)

	_, err = eng.AdvanceHeight(4)
	require.NoError(t, err)

	s.sweep(ctx)
	status, _ = eng.GetBetStatus(id)
	assert.Equal(t, engine.StatusCancelled, status)

	bal, err := ml.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), bal)

	require.Len(t, publ.published, 1)
	assert.Equal(t, events.TypeBetExpired, publ.published[0].Type)
	assert.Equal(t, id, publ.published[0].BetID)
}
