package dto

type CreateBetRequest struct {
	UserID         string `json:"userId"`
	Description    string `json:"description"`
	StakeCents     int64  `json:"stake_cents"`
	CreatorSide    bool   `json:"creator_side"` // lado da proposição escolhido pelo criador
	DurationBlocks int64  `json:"duration_blocks"`
}

type AcceptBetRequest struct {
	UserID string `json:"userId"`
}

type ResolveBetRequest struct {
	UserID  string `json:"userId"` // precisa ser o resolvedor configurado
	Outcome bool   `json:"outcome"`
}

type CancelBetRequest struct {
	UserID string `json:"userId"`
}

type SetFeeRateRequest struct {
	UserID     string `json:"userId"`
	FeeRateBps int64  `json:"fee_rate_bps"`
}

type WithdrawFeesRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
}

type AdvanceHeightRequest struct {
	Blocks int64 `json:"blocks"`
}
