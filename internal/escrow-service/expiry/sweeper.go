package expiry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/engine"
	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

// Publisher emite o evento bet_expired após cada devolução.
type Publisher interface {
	PublishBetLifecycle(ctx context.Context, e events.BetLifecycle) error
}

// Sweeper é o zelador de expiração: varre periodicamente as apostas OPEN
// já expiradas e devolve o stake ao criador. cancelExpired pode ser chamado
// por qualquer conta, então um job do próprio serviço é um gatilho legítimo.
type Sweeper struct {
	Log      *zap.Logger
	Engine   *engine.Engine
	Interval time.Duration
	Publ     Publisher
}

// Start roda o loop de varredura até o contexto ser cancelado.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	for _, id := range s.Engine.ExpiredOpen() {
		if err := s.Engine.CancelExpired(ctx, id); err != nil {
			// outra chamada pode ter fechado a aposta entre a listagem e o
			// cancelamento; isso não é um problema
			s.Log.Debug("expired sweep skip", zap.Int64("betId", id), zap.Error(err))
			continue
		}
		s.Log.Info("expired bet refunded", zap.Int64("betId", id))

		if s.Publ == nil {
			continue
		}
		b, ok := s.Engine.GetBet(id)
		if !ok {
			continue
		}
		ev := events.BetLifecycle{
			Type:        events.TypeBetExpired,
			BetID:       b.ID,
			Creator:     b.Creator,
			Description: b.Description,
			StakeCents:  b.StakeCents,
			CreatorSide: b.CreatorSide,
			Status:      string(b.Status),
			CreatedAt:   b.CreatedAt,
			ExpiresAt:   b.ExpiresAt,
		}
		if err := s.Publ.PublishBetLifecycle(ctx, ev); err != nil {
			s.Log.Warn("expired publish failed", zap.Int64("betId", id), zap.Error(err))
		}
	}
}
