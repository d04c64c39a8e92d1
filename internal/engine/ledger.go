package engine

import (
	"context"
	"sync"
)

// Ledger é o colaborador externo de saldos/transferências (wallet-service).
// Transfer é síncrono e atômico do ponto de vista do motor: ou move o valor
// inteiro ou falha sem efeito. Saldo insuficiente deve retornar
// ErrInsufficientBalance.
type Ledger interface {
	Balance(ctx context.Context, account string) (int64, error)
	Transfer(ctx context.Context, amountCents int64, from, to string) error
}

// MemoryLedger é uma implementação em memória do Ledger, usada nos testes e
// no modo local do escrow-service (LEDGER_MODE=memory), onde não há
// wallet-service rodando.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

// Seed define o saldo inicial de uma conta.
func (m *MemoryLedger) Seed(account string, amountCents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] = amountCents
}

func (m *MemoryLedger) Balance(_ context.Context, account string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

func (m *MemoryLedger) Transfer(_ context.Context, amountCents int64, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	if m.balances[from] < amountCents {
		return ErrInsufficientBalance
	}
	m.balances[from] -= amountCents
	m.balances[to] += amountCents
	return nil
}
