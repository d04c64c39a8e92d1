package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// BetID: obrigatório para subscribe/unsubscribe (0 inscreve em todas as apostas)
type ClientMsg struct {
	Type  string `json:"type"`  // subscribe | unsubscribe | ping
	BetID int64  `json:"betId"` // requerido em subscribe/unsubscribe
}

// BetUpdate representa uma atualização de aposta enviada para clientes WebSocket
type BetUpdate struct {
	BetID   int64       `json:"betId"`
	Payload interface{} `json:"payload"`
}
