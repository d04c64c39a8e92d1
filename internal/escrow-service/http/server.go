package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/engine"
	"github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/dto"
	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

// opsTotal conta operações do motor expostas via HTTP, por operação e resultado.
var opsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "escrow_operations_total",
		Help: "operações do motor por resultado",
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(opsTotal)
}

// Publisher emite eventos de ciclo de vida após transições bem-sucedidas.
type Publisher interface {
	PublishBetLifecycle(ctx context.Context, e events.BetLifecycle) error
}

// Server expõe todas as operações do motor de escrow em /v1.
type Server struct {
	log  *zap.Logger
	eng  *engine.Engine
	publ Publisher
}

func NewServer(log *zap.Logger, eng *engine.Engine, publ Publisher) *Server {
	return &Server{log: log, eng: eng, publ: publ}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Post("/bets", s.createBet)
		r.Get("/bets/next-id", s.nextBetID)
		r.Route("/bets/{betId}", func(r chi.Router) {
			r.Get("/", s.getBet)
			r.Get("/status", s.getBetStatus)
			r.Get("/escrow", s.getEscrow)
			r.Post("/accept", s.acceptBet)
			r.Post("/resolve", s.resolveBet)
			r.Post("/cancel", s.cancelBet)
			r.Post("/cancel-expired", s.cancelExpired)
		})
		r.Get("/users/{userId}/stats", s.getUserStats)
		r.Get("/fees", s.getFees)
		r.Get("/escrow/balance", s.getContractBalance)
		r.Get("/chain/height", s.getHeight)
		r.Post("/admin/fees/rate", s.setFeeRate)
		r.Post("/admin/fees/withdraw", s.withdrawFees)
		r.Post("/admin/chain/advance", s.advanceHeight)
	})
	return r
}

// statusFor traduz o erro do motor para o status HTTP.
// Violações de precondição de estado viram 409; erros fora do vocabulário do
// motor (ex.: wallet fora do ar) viram 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNotOwner), errors.Is(err, engine.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrAlreadyAccepted),
		errors.Is(err, engine.ErrNotAccepted),
		errors.Is(err, engine.ErrSelfBet),
		errors.Is(err, engine.ErrExpired),
		errors.Is(err, engine.ErrNotExpired),
		errors.Is(err, engine.ErrInsufficientBalance):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	opsTotal.WithLabelValues(op, "error").Inc()
	writeError(w, statusFor(err), err)
}

func (s *Server) ok(op string) {
	opsTotal.WithLabelValues(op, "ok").Inc()
}

func betID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "betId"), 10, 64)
}

// publish envia o evento de ciclo de vida; falha de publicação não desfaz a
// operação (o motor é a fonte de verdade, o archive é eventualmente
// consistente), só loga.
func (s *Server) publish(ctx context.Context, ev events.BetLifecycle) {
	if s.publ == nil {
		return
	}
	if err := s.publ.PublishBetLifecycle(ctx, ev); err != nil {
		s.log.Warn("bet lifecycle publish failed", zap.Int64("betId", ev.BetID), zap.Error(err))
	}
}

func lifecycleEvent(typ string, b engine.Bet) events.BetLifecycle {
	ev := events.BetLifecycle{
		Type:        typ,
		BetID:       b.ID,
		Creator:     b.Creator,
		Description: b.Description,
		StakeCents:  b.StakeCents,
		CreatorSide: b.CreatorSide,
		Status:      string(b.Status),
		Outcome:     b.Outcome,
		CreatedAt:   b.CreatedAt,
		ExpiresAt:   b.ExpiresAt,
		ResolvedAt:  b.ResolvedAt,
	}
	if b.Opponent != nil {
		ev.Opponent = *b.Opponent
	}
	return ev
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	id, err := s.eng.Create(r.Context(), req.UserID, engine.CreateParams{
		Description: req.Description,
		StakeCents:  req.StakeCents,
		CreatorSide: req.CreatorSide,
		Duration:    req.DurationBlocks,
	})
	if err != nil {
		s.fail(w, "create", err)
		return
	}
	s.ok("create")

	b, _ := s.eng.GetBet(id)
	s.publish(r.Context(), lifecycleEvent(events.TypeBetCreated, b))

	writeJSON(w, http.StatusCreated, dto.CreateBetResponse{
		BetID:     id,
		Status:    string(b.Status),
		ExpiresAt: b.ExpiresAt,
	})
}

func (s *Server) acceptBet(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}
	var req dto.AcceptBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.eng.Accept(r.Context(), req.UserID, id); err != nil {
		s.fail(w, "accept", err)
		return
	}
	s.ok("accept")

	b, _ := s.eng.GetBet(id)
	s.publish(r.Context(), lifecycleEvent(events.TypeBetAccepted, b))

	writeJSON(w, http.StatusOK, dto.BetStatusResponse{BetID: id, Status: string(b.Status)})
}

func (s *Server) resolveBet(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}
	var req dto.ResolveBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	res, err := s.eng.Resolve(r.Context(), req.UserID, id, req.Outcome)
	if err != nil {
		s.fail(w, "resolve", err)
		return
	}
	s.ok("resolve")

	b, _ := s.eng.GetBet(id)
	ev := lifecycleEvent(events.TypeBetResolved, b)
	ev.Winner = res.Winner
	ev.PayoutCents = res.PayoutCents
	ev.FeeCents = res.FeeCents
	s.publish(r.Context(), ev)

	writeJSON(w, http.StatusOK, dto.ResolveBetResponse{
		BetID:       id,
		Status:      string(b.Status),
		Winner:      res.Winner,
		PayoutCents: res.PayoutCents,
		FeeCents:    res.FeeCents,
	})
}

func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}
	var req dto.CancelBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.eng.Cancel(r.Context(), req.UserID, id); err != nil {
		s.fail(w, "cancel", err)
		return
	}
	s.ok("cancel")

	b, _ := s.eng.GetBet(id)
	s.publish(r.Context(), lifecycleEvent(events.TypeBetCancelled, b))

	writeJSON(w, http.StatusOK, dto.BetStatusResponse{BetID: id, Status: string(b.Status)})
}

func (s *Server) cancelExpired(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}

	// qualquer conta pode disparar; não há autorização aqui
	if err := s.eng.CancelExpired(r.Context(), id); err != nil {
		s.fail(w, "cancel_expired", err)
		return
	}
	s.ok("cancel_expired")

	b, _ := s.eng.GetBet(id)
	s.publish(r.Context(), lifecycleEvent(events.TypeBetExpired, b))

	writeJSON(w, http.StatusOK, dto.BetStatusResponse{BetID: id, Status: string(b.Status)})
}

func (s *Server) setFeeRate(w http.ResponseWriter, r *http.Request) {
	var req dto.SetFeeRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.eng.SetFeeRate(req.UserID, req.FeeRateBps); err != nil {
		s.fail(w, "set_fee_rate", err)
		return
	}
	s.ok("set_fee_rate")
	writeJSON(w, http.StatusOK, dto.FeesResponse{FeeRateBps: s.eng.FeeRate(), TotalFeesCents: s.eng.TotalFees()})
}

func (s *Server) withdrawFees(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.eng.WithdrawFees(r.Context(), req.UserID, req.AmountCents); err != nil {
		s.fail(w, "withdraw_fees", err)
		return
	}
	s.ok("withdraw_fees")
	writeJSON(w, http.StatusOK, dto.FeesResponse{FeeRateBps: s.eng.FeeRate(), TotalFeesCents: s.eng.TotalFees()})
}

func (s *Server) advanceHeight(w http.ResponseWriter, r *http.Request) {
	var req dto.AdvanceHeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	h, err := s.eng.AdvanceHeight(req.Blocks)
	if err != nil {
		s.fail(w, "advance_height", err)
		return
	}
	s.ok("advance_height")
	writeJSON(w, http.StatusOK, dto.HeightResponse{Height: h})
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}
	b, ok := s.eng.GetBet(id)
	if !ok {
		writeError(w, http.StatusNotFound, engine.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) getBetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}
	st, ok := s.eng.GetBetStatus(id)
	if !ok {
		writeError(w, http.StatusNotFound, engine.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.BetStatusResponse{BetID: id, Status: string(st)})
}

func (s *Server) getEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		http.Error(w, "invalid betId", http.StatusBadRequest)
		return
	}
	held, ok := s.eng.GetEscrow(id)
	if !ok {
		writeError(w, http.StatusNotFound, engine.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.EscrowEntryResponse{BetID: id, HeldCents: held})
}

func (s *Server) getUserStats(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "userId")
	st, ok := s.eng.GetUserStats(account)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no stats for account"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) getFees(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.FeesResponse{FeeRateBps: s.eng.FeeRate(), TotalFeesCents: s.eng.TotalFees()})
}

func (s *Server) getContractBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.eng.ContractBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ContractBalanceResponse{BalanceCents: bal})
}

func (s *Server) nextBetID(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.NextBetIDResponse{NextBetID: s.eng.NextBetID()})
}

func (s *Server) getHeight(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.HeightResponse{Height: s.eng.Height()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
