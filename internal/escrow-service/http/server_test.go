package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/engine"
	"github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/dto"
	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

// fakePublisher captura os eventos publicados, pra inspecionar nos testes.
type fakePublisher struct {
	mu  sync.Mutex
	evs []events.BetLifecycle
}

func (f *fakePublisher) PublishBetLifecycle(_ context.Context, e events.BetLifecycle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evs = append(f.evs, e)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.evs))
	for i, e := range f.evs {
		out[i] = e.Type
	}
	return out
}

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine, *fakePublisher) {
	t.Helper()
	ml := engine.NewMemoryLedger()
	ml.Seed("alice", 10_000)
	ml.Seed("bob", 10_000)

	eng, err := engine.New(zap.NewNop(), ml, engine.Config{
		Owner:         "house",
		EscrowAccount: "escrow-pool",
		FeeRateBps:    250,
		InitialHeight: 1,
	})
	require.NoError(t, err)

	publ := &fakePublisher{}
	srv := httptest.NewServer(NewServer(zap.NewNop(), eng, publ).Router())
	t.Cleanup(srv.Close)
	return srv, eng, publ
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestFullBetFlowOverHTTP(t *testing.T) {
	srv, eng, publ := newTestServer(t)

	// create
	res := post(t, srv.URL+"/v1/bets", dto.CreateBetRequest{
		UserID:         "alice",
		Description:    "A beats B",
		StakeCents:     1000,
		CreatorSide:    true,
		DurationBlocks: 10,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	created := decode[dto.CreateBetResponse](t, res)
	assert.Equal(t, int64(1), created.BetID)
	assert.Equal(t, "OPEN", created.Status)
	assert.Equal(t, int64(11), created.ExpiresAt)

	// accept
	res = post(t, srv.URL+"/v1/bets/1/accept", dto.AcceptBetRequest{UserID: "bob"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	accepted := decode[dto.BetStatusResponse](t, res)
	assert.Equal(t, "ACCEPTED", accepted.Status)

	held, ok := eng.GetEscrow(1)
	require.True(t, ok)
	assert.Equal(t, int64(2000), held)

	// resolve pelo resolvedor
	res = post(t, srv.URL+"/v1/bets/1/resolve", dto.ResolveBetRequest{UserID: "house", Outcome: true})
	require.Equal(t, http.StatusOK, res.StatusCode)
	resolved := decode[dto.ResolveBetResponse](t, res)
	assert.Equal(t, "alice", resolved.Winner)
	assert.Equal(t, int64(1950), resolved.PayoutCents)
	assert.Equal(t, int64(50), resolved.FeeCents)

	assert.Equal(t, []string{"bet_created", "bet_accepted", "bet_resolved"}, publ.types())
}

func TestErrorMapping(t *testing.T) {
	srv, _, _ := newTestServer(t)

	// stake inválido -> 400
	res := post(t, srv.URL+"/v1/bets", dto.CreateBetRequest{UserID: "alice", StakeCents: 0, DurationBlocks: 5})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	// aposta inexistente -> 404
	res = post(t, srv.URL+"/v1/bets/99/accept", dto.AcceptBetRequest{UserID: "bob"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res = post(t, srv.URL+"/v1/bets", dto.CreateBetRequest{UserID: "alice", StakeCents: 500, DurationBlocks: 5})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	// auto-aceite -> 409
	res = post(t, srv.URL+"/v1/bets/1/accept", dto.AcceptBetRequest{UserID: "alice"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()

	// resolve por quem não é o resolvedor -> 403
	res = post(t, srv.URL+"/v1/bets/1/resolve", dto.ResolveBetRequest{UserID: "alice", Outcome: true})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()

	// cancel-expired antes da hora -> 409
	res = post(t, srv.URL+"/v1/bets/1/cancel-expired", struct{}{})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()
}

func TestAdminAndReadEndpoints(t *testing.T) {
	srv, eng, _ := newTestServer(t)

	// taxa acima do cap -> 400, taxa anterior preservada
	res := post(t, srv.URL+"/v1/admin/fees/rate", dto.SetFeeRateRequest{UserID: "house", FeeRateBps: 5000})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	res = post(t, srv.URL+"/v1/admin/fees/rate", dto.SetFeeRateRequest{UserID: "house", FeeRateBps: 100})
	require.Equal(t, http.StatusOK, res.StatusCode)
	fees := decode[dto.FeesResponse](t, res)
	assert.Equal(t, int64(100), fees.FeeRateBps)

	// avança o relógio lógico
	res = post(t, srv.URL+"/v1/admin/chain/advance", dto.AdvanceHeightRequest{Blocks: 7})
	require.Equal(t, http.StatusOK, res.StatusCode)
	h := decode[dto.HeightResponse](t, res)
	assert.Equal(t, int64(8), h.Height)
	assert.Equal(t, int64(8), eng.Height())

	// next-id antes de qualquer aposta
	resp, err := http.Get(srv.URL + "/v1/bets/next-id")
	require.NoError(t, err)
	next := decode[dto.NextBetIDResponse](t, resp)
	assert.Equal(t, int64(1), next.NextBetID)

	// stats inexistentes -> 404
	resp, err = http.Get(srv.URL + "/v1/users/nobody/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// saldo da custódia via ledger
	resp, err = http.Get(srv.URL + "/v1/escrow/balance")
	require.NoError(t, err)
	bal := decode[dto.ContractBalanceResponse](t, resp)
	assert.Equal(t, int64(0), bal.BalanceCents)
}

func TestGetBetAndStats(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res := post(t, srv.URL+"/v1/bets", dto.CreateBetRequest{UserID: "alice", StakeCents: 300, CreatorSide: true, DurationBlocks: 4})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	resp, err := http.Get(srv.URL + "/v1/bets/1")
	require.NoError(t, err)
	b := decode[engine.Bet](t, resp)
	assert.Equal(t, "alice", b.Creator)
	assert.Nil(t, b.Opponent)

	resp, err = http.Get(srv.URL + "/v1/users/alice/stats")
	require.NoError(t, err)
	st := decode[engine.UserStats](t, resp)
	assert.Equal(t, int64(1), st.TotalBets)
	assert.Equal(t, int64(300), st.TotalWageredCents)

	resp, err = http.Get(srv.URL + "/v1/bets/1/escrow")
	require.NoError(t, err)
	esc := decode[dto.EscrowEntryResponse](t, resp)
	assert.Equal(t, int64(300), esc.HeldCents)
}
