package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/cache"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/repo"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/ws"
)

// API expõe os endpoints REST de consulta do read model de apostas
// e o endpoint WebSocket de atualizações ao vivo
type API struct {
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache de snapshots
	Hub      *ws.Hub        // conexões WebSocket
}

// Router retorna o roteador HTTP com os endpoints REST e o WS
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/bets/{id}", a.getBet)              // Snapshot corrente de uma aposta
	r.Get("/v1/bets/{id}/history", a.listHistory) // Transições registradas
	r.Get("/ws", a.Hub.HandleWS)                  // Feed ao vivo
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func betID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// getBet retorna o snapshot corrente de uma aposta, preferencialmente do cache
func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bet id"})
		return
	}

	if raw, ok, _ := a.Cache.GetCurrent(r.Context(), id); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	b, err := a.ReadRepo.GetBet(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// listHistory retorna as transições registradas de uma aposta
func (a *API) listHistory(w http.ResponseWriter, r *http.Request) {
	id, err := betID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bet id"})
		return
	}
	hist, err := a.ReadRepo.ListHistory(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
