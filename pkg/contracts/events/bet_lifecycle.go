package events

// Tipos de transição publicados no tópico "bet_lifecycle".
const (
	TypeBetCreated   = "bet_created"
	TypeBetAccepted  = "bet_accepted"
	TypeBetResolved  = "bet_resolved"
	TypeBetCancelled = "bet_cancelled"
	TypeBetExpired   = "bet_expired"
)

// BetLifecycle é o evento emitido pelo escrow-service após cada transição de
// estado bem-sucedida. Carrega um snapshot do registro para que o archiver
// consiga fazer upsert idempotente sem consultar o motor.
type BetLifecycle struct {
	Type        string `json:"type"`
	BetID       int64  `json:"bet_id"`
	Creator     string `json:"creator"`
	Opponent    string `json:"opponent,omitempty"`
	Description string `json:"description"`
	StakeCents  int64  `json:"stake_cents"`
	CreatorSide bool   `json:"creator_side"`
	Status      string `json:"status"`
	Outcome     *bool  `json:"outcome,omitempty"`
	Winner      string `json:"winner,omitempty"`
	PayoutCents int64  `json:"payout_cents,omitempty"`
	FeeCents    int64  `json:"fee_cents,omitempty"`
	CreatedAt   int64  `json:"created_at"`  // altura lógica
	ExpiresAt   int64  `json:"expires_at"`  // altura lógica
	ResolvedAt  *int64 `json:"resolved_at,omitempty"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
