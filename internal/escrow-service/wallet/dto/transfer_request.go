package dto

type TransferRequest struct {
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref,omitempty"` // ex: betId, p/ rastreio no ledger
}
