package dto

// BetRow é a projeção de uma aposta no read model (tabela bets_current)
type BetRow struct {
	BetID          int64   `json:"betId"`
	Creator        string  `json:"creator"`
	Opponent       *string `json:"opponent,omitempty"`
	Description    string  `json:"description"`
	StakeCents     int64   `json:"stakeCents"`
	CreatorSide    bool    `json:"creatorSide"`
	Status         string  `json:"status"`
	Outcome        *bool   `json:"outcome,omitempty"`
	Winner         *string `json:"winner,omitempty"`
	PayoutCents    int64   `json:"payoutCents"`
	FeeCents       int64   `json:"feeCents"`
	CreatedHeight  int64   `json:"createdHeight"`
	ExpiresHeight  int64   `json:"expiresHeight"`
	ResolvedHeight *int64  `json:"resolvedHeight,omitempty"`
	UpdatedAt      string  `json:"updatedAt"`
}

// HistoryRow é uma transição registrada no histórico (tabela bet_history)
type HistoryRow struct {
	BetID       int64   `json:"betId"`
	EventType   string  `json:"eventType"`
	Status      string  `json:"status"`
	Winner      *string `json:"winner,omitempty"`
	PayoutCents int64   `json:"payoutCents"`
	FeeCents    int64   `json:"feeCents"`
	TsUnixMs    int64   `json:"tsUnixMs"`
}
