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

	"github.com/radieske/p2p-bet-escrow-poc/internal/wallet-service/dto"
	"github.com/radieske/p2p-bet-escrow-poc/internal/wallet-service/repo"
)

// memRepo simula o repositório Postgres em memória para os testes de handler.
type memRepo struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newMemRepo() *memRepo { return &memRepo{balances: make(map[string]int64)} }

func (m *memRepo) GetOrCreateWallet(_ context.Context, userID string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return "w-" + userID, m.balances[userID], nil
}

func (m *memRepo) Deposit(_ context.Context, userID string, amount int64, _ string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return "w-" + userID, m.balances[userID], nil
}

func (m *memRepo) Transfer(_ context.Context, from, to string, amount int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[from] < amount {
		return repo.ErrInsufficientFunds
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return res
}

func TestDepositAndBalance(t *testing.T) {
	srv := httptest.NewServer(NewServer(zap.NewNop(), newMemRepo()).Router())
	defer srv.Close()

	res := postJSON(t, srv.URL+"/wallet/deposit", dto.DepositRequest{UserID: "alice", AmountCents: 5000})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var wr dto.WalletResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&wr))
	res.Body.Close()
	assert.Equal(t, int64(5000), wr.BalanceCents)

	resp, err := http.Get(srv.URL + "/wallet?userId=alice")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wr))
	resp.Body.Close()
	assert.Equal(t, int64(5000), wr.BalanceCents)
}

func TestTransferEndpoint(t *testing.T) {
	mr := newMemRepo()
	mr.balances["alice"] = 1000
	srv := httptest.NewServer(NewServer(zap.NewNop(), mr).Router())
	defer srv.Close()

	res := postJSON(t, srv.URL+"/wallet/transfer", dto.TransferRequest{From: "alice", To: "escrow-pool", AmountCents: 600})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
	assert.Equal(t, int64(400), mr.balances["alice"])
	assert.Equal(t, int64(600), mr.balances["escrow-pool"])

	// saldo insuficiente -> 409, nada muda
	res = postJSON(t, srv.URL+"/wallet/transfer", dto.TransferRequest{From: "alice", To: "escrow-pool", AmountCents: 600})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	res.Body.Close()
	assert.Equal(t, int64(400), mr.balances["alice"])

	// payload inválido -> 400
	res = postJSON(t, srv.URL+"/wallet/transfer", dto.TransferRequest{From: "alice", To: "alice", AmountCents: 10})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}
