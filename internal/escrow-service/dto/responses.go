package dto

type CreateBetResponse struct {
	BetID     int64  `json:"betId"`
	Status    string `json:"status"` // OPEN
	ExpiresAt int64  `json:"expires_at"`
}

type BetStatusResponse struct {
	BetID  int64  `json:"betId"`
	Status string `json:"status"`
}

type ResolveBetResponse struct {
	BetID       int64  `json:"betId"`
	Status      string `json:"status"` // RESOLVED
	Winner      string `json:"winner"`
	PayoutCents int64  `json:"payout_cents"`
	FeeCents    int64  `json:"fee_cents"`
}

type FeesResponse struct {
	FeeRateBps     int64 `json:"fee_rate_bps"`
	TotalFeesCents int64 `json:"total_fees_cents"`
}

type EscrowEntryResponse struct {
	BetID     int64 `json:"betId"`
	HeldCents int64 `json:"held_cents"`
}

type ContractBalanceResponse struct {
	BalanceCents int64 `json:"balance_cents"`
}

type NextBetIDResponse struct {
	NextBetID int64 `json:"next_bet_id"`
}

type HeightResponse struct {
	Height int64 `json:"height"`
}
