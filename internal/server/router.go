package server

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/auth"
	"github.com/docesmaloca/doces-api/internal/config"
	"github.com/docesmaloca/doces-api/internal/handlers"
	"github.com/docesmaloca/doces-api/internal/httpx"
	"github.com/docesmaloca/doces-api/internal/middleware"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	authSvc := auth.NewService(db, cfg.JWTSecret)
	protected := func(h http.HandlerFunc) http.Handler {
		return authSvc.RequireAuth(h)
	}

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Service banner on the exact root path only.
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"message": "API Doces da Maloca",
			"status":  "online",
			"version": "2.0.0",
		})
	})
	//revive:enable:unused-parameter

	// Auth endpoints
	ah := handlers.NewAuthHandler(db, authSvc, log)
	mux.HandleFunc("POST /api/auth/registro", ah.Registro)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.Handle("GET /api/auth/verificar", protected(ah.Verificar))

	// Cliente endpoints. The literal ranking-sabores route wins over the
	// {id} wildcard under ServeMux precedence.
	ch := handlers.NewClienteHandler(db, log)
	mux.Handle("GET /api/clientes", protected(ch.List))
	mux.Handle("POST /api/clientes", protected(ch.Create))
	mux.Handle("GET /api/clientes/ranking-sabores", protected(ch.RankingSabores))
	mux.Handle("GET /api/clientes/{id}", protected(ch.Get))
	mux.Handle("PUT /api/clientes/{id}", protected(ch.Update))
	mux.Handle("DELETE /api/clientes/{id}", protected(ch.Delete))
	mux.Handle("GET /api/clientes/{id}/estatisticas", protected(ch.Estatisticas))
	mux.Handle("GET /api/clientes/{id}/sabores", protected(ch.Sabores))

	// Sabor endpoints
	sh := handlers.NewSaborHandler(db, log)
	mux.Handle("GET /api/sabores", protected(sh.List))

	// Venda endpoints
	vh := handlers.NewVendaHandler(db, log)
	mux.Handle("GET /api/vendas", protected(vh.List))
	mux.Handle("POST /api/vendas", protected(vh.Create))
	mux.Handle("GET /api/vendas/totais", protected(vh.Totais))
	mux.Handle("GET /api/vendas/relatorio-mensal", protected(vh.RelatorioMensal))
	mux.Handle("GET /api/vendas/{id}", protected(vh.Get))
	mux.Handle("PUT /api/vendas/{id}", protected(vh.Update))
	mux.Handle("DELETE /api/vendas/{id}", protected(vh.Delete))

	var handler http.Handler = mux
	handler = middleware.Recover(log)(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.CORS(cfg.CORSOrigin)(handler)
	return handler
}
