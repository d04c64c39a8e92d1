package engine

import "context"

// Acessores de leitura. Todos retornam cópias: o estado interno nunca escapa
// do mutex.

// GetBet retorna o registro completo de uma aposta, se existir.
func (e *Engine) GetBet(betID int64) (Bet, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bets[betID]
	if !ok {
		return Bet{}, false
	}
	return *b, true
}

// GetBetStatus retorna somente o status de uma aposta.
func (e *Engine) GetBetStatus(betID int64) (BetStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bets[betID]
	if !ok {
		return "", false
	}
	return b.Status, true
}

// GetUserStats retorna as estatísticas acumuladas de uma conta.
func (e *Engine) GetUserStats(account string) (UserStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.stats[account]
	if !ok {
		return UserStats{}, false
	}
	return *s, true
}

// GetEscrow retorna o valor custodiado para uma aposta. ok == false quando a
// entrada já foi liquidada (ou o id nunca existiu).
func (e *Engine) GetEscrow(betID int64) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.escrow[betID]
	return v, ok
}

// FeeRate retorna a taxa vigente em basis points.
func (e *Engine) FeeRate() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feeRateBps
}

// TotalFees retorna o saldo de taxas acumulado ainda não sacado.
func (e *Engine) TotalFees() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feesAccrued
}

// NextBetID retorna o próximo id que o alocador emitirá.
func (e *Engine) NextBetID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextID
}

// Owner retorna a identidade do resolvedor configurado.
func (e *Engine) Owner() string {
	return e.owner
}

// ContractBalance consulta no ledger o saldo total da conta de custódia
// (stakes em aberto + taxas ainda não sacadas).
func (e *Engine) ContractBalance(ctx context.Context) (int64, error) {
	return e.ledger.Balance(ctx, e.escrowAcct)
}

// Height retorna a altura lógica corrente.
func (e *Engine) Height() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.height
}

// AdvanceHeight avança o relógio lógico em delta alturas e retorna o novo
// valor. delta deve ser positivo.
func (e *Engine) AdvanceHeight(delta int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if delta <= 0 {
		return 0, ErrInvalidAmount
	}
	e.height += delta
	return e.height, nil
}

// ExpiredOpen lista os ids de apostas OPEN cuja expiração já passou.
// Usado pelo varredor de expiração do escrow-service.
func (e *Engine) ExpiredOpen() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []int64
	for id, b := range e.bets {
		if b.Status == StatusOpen && e.height >= b.ExpiresAt {
			ids = append(ids, id)
		}
	}
	return ids
}
