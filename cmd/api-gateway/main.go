package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/config"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New("api-gateway", cfg.Env)
	defer log.Sync()

	// targets
	escrowURL := os.Getenv("ESCROW_URL")
	if escrowURL == "" {
		escrowURL = "http://localhost:8083"
	}
	walletURL := os.Getenv("WALLET_URL")
	if walletURL == "" {
		walletURL = "http://localhost:8082"
	}
	feedURL := os.Getenv("FEED_URL")
	if feedURL == "" {
		feedURL = "http://localhost:8084"
	}
	escrow := rp(escrowURL)
	wallet := rp(walletURL)
	feed := rp(feedURL)

	mux := http.NewServeMux()

	// escrow (ex.: /api/escrow/* -> escrow-service)
	mux.Handle("/api/escrow/", http.StripPrefix("/api/escrow", escrow))

	// wallet (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// feed (ex.: /api/feed/* -> bet-feed-service; inclui o /ws)
	mux.Handle("/api/feed/", http.StripPrefix("/api/feed", feed))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
