package engine

// BetStatus representa o estado de uma aposta no ciclo de vida.
// Transições válidas: OPEN -> ACCEPTED -> RESOLVED ou OPEN -> CANCELLED.
type BetStatus string

const (
	StatusOpen      BetStatus = "OPEN"
	StatusAccepted  BetStatus = "ACCEPTED"
	StatusResolved  BetStatus = "RESOLVED"
	StatusCancelled BetStatus = "CANCELLED"
)

// MaxDescriptionLen limita o tamanho da descrição livre de uma aposta.
const MaxDescriptionLen = 256

// Bet é o registro completo de uma aposta p2p.
// Campos opcionais (Opponent, Outcome, ResolvedAt) são ponteiros: presentes
// somente quando o status correspondente foi atingido.
type Bet struct {
	ID          int64     `json:"betId"`
	Creator     string    `json:"creator"`
	Opponent    *string   `json:"opponent,omitempty"` // definido no accept
	Description string    `json:"description"`
	StakeCents  int64     `json:"stake_cents"` // valor por lado, fixo na criação
	CreatorSide bool      `json:"creator_side"`
	Status      BetStatus `json:"status"`
	Outcome     *bool     `json:"outcome,omitempty"`     // definido no resolve
	CreatedAt   int64     `json:"created_at"`            // altura lógica da criação
	ExpiresAt   int64     `json:"expires_at"`            // created_at + duração
	ResolvedAt  *int64    `json:"resolved_at,omitempty"` // altura do resolve
}

// Winner retorna a conta vencedora de uma aposta resolvida.
// Só é significativo quando Status == RESOLVED.
func (b *Bet) Winner() string {
	if b.Outcome == nil || b.Opponent == nil {
		return ""
	}
	if b.CreatorSide == *b.Outcome {
		return b.Creator
	}
	return *b.Opponent
}

// UserStats acumula contadores por conta. Contadores nunca decrescem e a
// entrada é criada de forma lazy na primeira participação.
type UserStats struct {
	Account           string `json:"account"`
	TotalBets         int64  `json:"total_bets"` // participações (criar e aceitar contam separado)
	BetsWon           int64  `json:"bets_won"`
	TotalWageredCents int64  `json:"total_wagered_cents"`
	TotalWonCents     int64  `json:"total_won_cents"`
}
