package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/dto"
)

// ReadRepo consulta o read model mantido pelo bet-archiver-worker
type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) GetBet(ctx context.Context, betID int64) (dto.BetRow, error) {
	const q = `
		SELECT bet_id, creator, opponent, description, stake_cents, creator_side,
		       status, outcome, winner, payout_cents, fee_cents,
		       created_height, expires_height, resolved_height,
		       to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM bets_current
		WHERE bet_id = $1;
	`
	var b dto.BetRow
	err := r.DB.QueryRowContext(ctx, q, betID).Scan(
		&b.BetID, &b.Creator, &b.Opponent, &b.Description, &b.StakeCents, &b.CreatorSide,
		&b.Status, &b.Outcome, &b.Winner, &b.PayoutCents, &b.FeeCents,
		&b.CreatedHeight, &b.ExpiresHeight, &b.ResolvedHeight, &b.UpdatedAt,
	)
	return b, err
}

func (r *ReadRepo) ListHistory(ctx context.Context, betID int64) ([]dto.HistoryRow, error) {
	const q = `
		SELECT bet_id, event_type, status, winner, payout_cents, fee_cents, ts_unix_ms
		FROM bet_history
		WHERE bet_id = $1
		ORDER BY ts_unix_ms;
	`
	rows, err := r.DB.QueryContext(ctx, q, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.HistoryRow
	for rows.Next() {
		var h dto.HistoryRow
		if err := rows.Scan(&h.BetID, &h.EventType, &h.Status, &h.Winner, &h.PayoutCents, &h.FeeCents, &h.TsUnixMs); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
