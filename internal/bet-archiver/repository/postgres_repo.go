package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

// PostgresRepo mantém o read model de apostas em Postgres.
// O motor em memória é a fonte de verdade; estas tabelas existem para
// relatório/auditoria e são atualizadas de forma eventualmente consistente
// a partir dos eventos de ciclo de vida.
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertCurrent insere ou atualiza o snapshot corrente de uma aposta
// Utiliza ON CONFLICT para idempotência por bet_id (eventos podem se repetir)
func (r *PostgresRepo) UpsertCurrent(ctx context.Context, e events.BetLifecycle) error {
	const q = `
		INSERT INTO bets_current
		  (bet_id, creator, opponent, description, stake_cents, creator_side,
		   status, outcome, winner, payout_cents, fee_cents,
		   created_height, expires_height, resolved_height, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW())
		ON CONFLICT (bet_id) DO UPDATE SET
		  opponent        = EXCLUDED.opponent,
		  status          = EXCLUDED.status,
		  outcome         = EXCLUDED.outcome,
		  winner          = EXCLUDED.winner,
		  payout_cents    = EXCLUDED.payout_cents,
		  fee_cents       = EXCLUDED.fee_cents,
		  resolved_height = EXCLUDED.resolved_height,
		  updated_at      = NOW()
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.BetID, e.Creator, nullStr(e.Opponent), e.Description, e.StakeCents, e.CreatorSide,
		e.Status, e.Outcome, nullStr(e.Winner), e.PayoutCents, e.FeeCents,
		e.CreatedAt, e.ExpiresAt, e.ResolvedAt,
	)
	return err
}

// InsertHistory registra a transição no histórico (uma linha por evento)
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.BetLifecycle) error {
	const q = `
		INSERT INTO bet_history
		  (bet_id, event_type, status, winner, payout_cents, fee_cents, ts_unix_ms)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.BetID, e.Type, e.Status, nullStr(e.Winner), e.PayoutCents, e.FeeCents, e.TsUnixMs,
	)
	return err
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
