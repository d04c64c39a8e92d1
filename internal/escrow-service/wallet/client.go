package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/radieske/p2p-bet-escrow-poc/internal/engine"
	walletdto "github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/wallet/dto"
)

// Client fala com o wallet-service e implementa engine.Ledger.
// É o único colaborador externo do motor: consulta de saldo e transferência
// atômica entre contas.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Balance consulta (criando se preciso) a carteira da conta.
func (c *Client) Balance(ctx context.Context, account string) (int64, error) {
	u := c.BaseURL + "/wallet?userId=" + url.QueryEscape(account)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return 0, fmt.Errorf("wallet balance http %d", res.StatusCode)
	}
	var out walletdto.BalanceResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.BalanceCents, nil
}

// Transfer move amountCents de from para to em uma única transação do
// wallet-service. 409 vira engine.ErrInsufficientBalance para o motor
// abortar a operação sem efeito.
func (c *Client) Transfer(ctx context.Context, amountCents int64, from, to string) error {
	body, _ := json.Marshal(walletdto.TransferRequest{From: from, To: to, AmountCents: amountCents})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/transfer", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusConflict:
		return engine.ErrInsufficientBalance
	case res.StatusCode >= 300:
		return fmt.Errorf("wallet transfer http %d", res.StatusCode)
	}
	return nil
}
