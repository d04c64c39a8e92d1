package topics

const (
	// Ciclo de vida das apostas (publicado pelo escrow-service)
	BetLifecycle = "bet_lifecycle"

	// DLQ
	BetLifecycleDLQ = "bet_lifecycle_dlq"
)
