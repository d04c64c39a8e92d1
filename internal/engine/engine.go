package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// FeeRateCapBps limita a taxa da plataforma a 10%.
const FeeRateCapBps = 1000

// Config parametriza uma instância do motor.
type Config struct {
	Owner         string // identidade do resolvedor/dono (autoriza resolve, taxas)
	EscrowAccount string // conta do ledger onde o motor custodia os stakes
	FeeRateBps    int64  // taxa inicial da plataforma em basis points
	InitialHeight int64  // altura lógica inicial
}

// Engine é o motor de apostas p2p com custódia (escrow).
//
// Todo o estado (registro de apostas, escrow, estatísticas, taxas, alocador de
// ids, relógio lógico) vive em memória e é serializado por um único mutex,
// reproduzindo o modelo transacional tudo-ou-nada de uma chamada de contrato:
// cada operação pública valida precondições, executa a única transferência
// falível no ledger e só então muta o estado. Não existe mutação parcial.
type Engine struct {
	mu     sync.Mutex
	log    *zap.Logger
	ledger Ledger

	owner      string
	escrowAcct string

	bets   map[int64]*Bet
	escrow map[int64]int64 // betId -> total custodiado
	stats  map[string]*UserStats

	feeRateBps  int64
	feesAccrued int64 // saldo de taxas sacável pelo dono
	nextID      int64 // alocador monotônico, começa em 1, nunca reusa
	height      int64 // relógio lógico ("now" para expiração)
}

// New cria um motor com estado zerado. Falha se a taxa inicial exceder o cap.
func New(log *zap.Logger, ledger Ledger, cfg Config) (*Engine, error) {
	if cfg.Owner == "" || cfg.EscrowAccount == "" {
		return nil, fmt.Errorf("engine: owner and escrow account are required")
	}
	if cfg.FeeRateBps < 0 || cfg.FeeRateBps > FeeRateCapBps {
		return nil, ErrInvalidAmount
	}
	return &Engine{
		log:        log,
		ledger:     ledger,
		owner:      cfg.Owner,
		escrowAcct: cfg.EscrowAccount,
		bets:       make(map[int64]*Bet),
		escrow:     make(map[int64]int64),
		stats:      make(map[string]*UserStats),
		feeRateBps: cfg.FeeRateBps,
		nextID:     1,
		height:     cfg.InitialHeight,
	}, nil
}

// CreateParams agrupa os dados de criação de uma aposta.
type CreateParams struct {
	Description string
	StakeCents  int64
	CreatorSide bool
	Duration    int64 // em alturas; expiração = altura atual + Duration
}

// Create registra uma aposta OPEN, movendo o stake do criador para o escrow.
// Retorna o id recém alocado. O alocador só avança se a operação inteira
// tiver sucesso.
func (e *Engine) Create(ctx context.Context, caller string, p CreateParams) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.StakeCents <= 0 || p.Duration <= 0 {
		return 0, ErrInvalidAmount
	}
	if len(p.Description) > MaxDescriptionLen {
		return 0, ErrInvalidAmount
	}

	// Única etapa falível: mover o stake para a custódia.
	if err := e.ledger.Transfer(ctx, p.StakeCents, caller, e.escrowAcct); err != nil {
		return 0, err
	}

	id := e.nextID
	e.nextID++

	e.bets[id] = &Bet{
		ID:          id,
		Creator:     caller,
		Description: p.Description,
		StakeCents:  p.StakeCents,
		CreatorSide: p.CreatorSide,
		Status:      StatusOpen,
		CreatedAt:   e.height,
		ExpiresAt:   e.height + p.Duration,
	}
	e.escrow[id] = p.StakeCents
	e.recordStats(caller, p.StakeCents, 0, 0)

	e.log.Info("bet created",
		zap.Int64("betId", id),
		zap.String("creator", caller),
		zap.Int64("stake_cents", p.StakeCents),
		zap.Int64("expires_at", e.height+p.Duration),
	)
	return id, nil
}

// Accept entra na aposta como oponente, dobrando o valor em escrow.
func (e *Engine) Accept(ctx context.Context, caller string, betID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.bets[betID]
	if !ok {
		return ErrNotFound
	}
	if b.Status != StatusOpen {
		return ErrAlreadyAccepted
	}
	if caller == b.Creator {
		return ErrSelfBet
	}
	if e.height >= b.ExpiresAt {
		return ErrExpired
	}

	if err := e.ledger.Transfer(ctx, b.StakeCents, caller, e.escrowAcct); err != nil {
		return err
	}

	opp := caller
	b.Opponent = &opp
	b.Status = StatusAccepted
	e.escrow[betID] = 2 * b.StakeCents
	e.recordStats(caller, b.StakeCents, 0, 0)

	e.log.Info("bet accepted", zap.Int64("betId", betID), zap.String("opponent", caller))
	return nil
}

// ResolveResult descreve a liquidação de uma aposta.
type ResolveResult struct {
	Winner      string
	PayoutCents int64
	FeeCents    int64
}

// Resolve declara o resultado. Somente o dono (resolvedor) pode chamar.
// O pote (2x stake) é dividido em payout para o vencedor e taxa da plataforma;
// a divisão é exata: payout + fee == pote, com truncamento inteiro acumulando
// na taxa.
func (e *Engine) Resolve(ctx context.Context, caller string, betID int64, outcome bool) (ResolveResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ResolveResult{}, ErrNotAuthorized
	}
	b, ok := e.bets[betID]
	if !ok {
		return ResolveResult{}, ErrNotFound
	}
	if b.Status != StatusAccepted {
		return ResolveResult{}, ErrNotAccepted
	}

	totalPot := 2 * b.StakeCents
	fee := totalPot * e.feeRateBps / 10000
	payout := totalPot - fee

	winner := b.Creator
	if b.CreatorSide != outcome {
		winner = *b.Opponent
	}

	if err := e.ledger.Transfer(ctx, payout, e.escrowAcct, winner); err != nil {
		return ResolveResult{}, err
	}

	out := outcome
	now := e.height
	b.Status = StatusResolved
	b.Outcome = &out
	b.ResolvedAt = &now
	delete(e.escrow, betID)
	e.feesAccrued += fee
	e.recordStats(winner, 0, 1, payout)

	e.log.Info("bet resolved",
		zap.Int64("betId", betID),
		zap.Bool("outcome", outcome),
		zap.String("winner", winner),
		zap.Int64("payout_cents", payout),
		zap.Int64("fee_cents", fee),
	)
	return ResolveResult{Winner: winner, PayoutCents: payout, FeeCents: fee}, nil
}

// Cancel desfaz uma aposta OPEN, devolvendo o stake ao criador.
// Somente o criador pode cancelar antes da expiração.
func (e *Engine) Cancel(ctx context.Context, caller string, betID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.bets[betID]
	if !ok {
		return ErrNotFound
	}
	if caller != b.Creator {
		return ErrNotOwner
	}
	if b.Status != StatusOpen {
		return ErrAlreadyAccepted
	}
	return e.refundAndClose(ctx, b)
}

// CancelExpired devolve o stake de uma aposta OPEN já expirada.
// Qualquer conta pode chamar; o reembolso vai sempre para o criador.
func (e *Engine) CancelExpired(ctx context.Context, betID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.bets[betID]
	if !ok {
		return ErrNotFound
	}
	if b.Status != StatusOpen {
		return ErrAlreadyAccepted
	}
	if e.height < b.ExpiresAt {
		return ErrNotExpired
	}
	return e.refundAndClose(ctx, b)
}

// refundAndClose move o stake de volta ao criador e fecha a aposta.
// Chamado com o mutex já adquirido.
func (e *Engine) refundAndClose(ctx context.Context, b *Bet) error {
	if err := e.ledger.Transfer(ctx, b.StakeCents, e.escrowAcct, b.Creator); err != nil {
		return err
	}
	b.Status = StatusCancelled
	delete(e.escrow, b.ID)

	e.log.Info("bet cancelled", zap.Int64("betId", b.ID), zap.String("refund_to", b.Creator))
	return nil
}

// SetFeeRate altera a taxa da plataforma. Somente o dono; cap de 10%.
func (e *Engine) SetFeeRate(caller string, bps int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	if bps < 0 || bps > FeeRateCapBps {
		return ErrInvalidAmount
	}
	e.feeRateBps = bps
	e.log.Info("fee rate updated", zap.Int64("bps", bps))
	return nil
}

// WithdrawFees saca taxas acumuladas para a conta do dono.
func (e *Engine) WithdrawFees(ctx context.Context, caller string, amountCents int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrNotOwner
	}
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	if amountCents > e.feesAccrued {
		return ErrInsufficientBalance
	}
	if err := e.ledger.Transfer(ctx, amountCents, e.escrowAcct, e.owner); err != nil {
		return err
	}
	e.feesAccrued -= amountCents

	e.log.Info("fees withdrawn", zap.Int64("amount_cents", amountCents), zap.Int64("remaining_cents", e.feesAccrued))
	return nil
}

// recordStats aplica o incremento de estatísticas de uma conta.
// TotalBets só incrementa quando há valor apostado (wagered > 0): criar e
// aceitar contam cada um como uma participação; vencer não re-conta.
func (e *Engine) recordStats(account string, wagered, won, winnings int64) {
	s, ok := e.stats[account]
	if !ok {
		s = &UserStats{Account: account}
		e.stats[account] = s
	}
	if wagered > 0 {
		s.TotalBets++
	}
	s.BetsWon += won
	s.TotalWageredCents += wagered
	s.TotalWonCents += winnings
}
