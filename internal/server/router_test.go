package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/config"
	"github.com/docesmaloca/doces-api/internal/models"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Usuario{}, &models.Cliente{}, &models.Sabor{}, &models.Venda{}, &models.VendaSabor{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.Config{
		JWTSecret:  "segredo-de-teste",
		CORSOrigin: "http://localhost:5173",
	}
	return New(db, cfg, log), db
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
}

func registrar(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/auth/registro", "",
		`{"nome":"Admin","email":"admin@docesmaloca.com","senha":"123456"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("registro: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("registro returned no token")
	}
	return resp.Token
}

func TestRootBanner(t *testing.T) {
	h, _ := setupRouter(t)
	w := do(t, h, http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["message"] != "API Doces da Maloca" || body["status"] != "online" {
		t.Fatalf("unexpected banner: %v", body)
	}
	// The {$} pattern must not swallow unknown paths.
	if w := do(t, h, http.MethodGet, "/nada", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h, _ := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := do(t, h, http.MethodGet, path, "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestRotasProtegidasExigemToken(t *testing.T) {
	h, _ := setupRouter(t)
	rotas := []struct{ method, path string }{
		{http.MethodGet, "/api/clientes"},
		{http.MethodPost, "/api/clientes"},
		{http.MethodGet, "/api/clientes/1"},
		{http.MethodGet, "/api/clientes/ranking-sabores"},
		{http.MethodGet, "/api/sabores"},
		{http.MethodGet, "/api/vendas"},
		{http.MethodPost, "/api/vendas"},
		{http.MethodGet, "/api/vendas/totais"},
		{http.MethodGet, "/api/vendas/relatorio-mensal"},
		{http.MethodGet, "/api/auth/verificar"},
	}
	for _, rota := range rotas {
		w := do(t, h, rota.method, rota.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", rota.method, rota.path, w.Code)
		}
	}
}

func TestFluxoCompleto(t *testing.T) {
	h, db := setupRouter(t)
	token := registrar(t, h)

	// Login with the same credentials also works.
	w := do(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"admin@docesmaloca.com","senha":"123456"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/auth/verificar", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("verificar: expected 200 got %d: %s", w.Code, w.Body.String())
	}

	// Create a client through the full stack.
	w = do(t, h, http.MethodPost, "/api/clientes", token, `{"nome":"Teste"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("cliente create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var cliente models.Cliente
	decode(t, w, &cliente)
	if cliente.ID == 0 {
		t.Fatal("cliente without id")
	}

	sabor := models.Sabor{Nome: "Tradicional", PrecoUnitario: 5.5, Ativo: true}
	if err := db.Create(&sabor).Error; err != nil {
		t.Fatalf("seed sabor: %v", err)
	}

	body := fmt.Sprintf(`{"clienteId":%d,"quantidade":10,"valor":55.0,"sabores":[{"saborId":%d,"quantidade":10}]}`, cliente.ID, sabor.ID)
	w = do(t, h, http.MethodPost, "/api/vendas", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("venda create: expected 201 got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/vendas/totais?clienteId=%d", cliente.ID), token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("totais: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var tot struct {
		TotalGeral  int     `json:"totalGeral"`
		ValorTotal  string  `json:"valorTotal"`
		TotalVendas int     `json:"totalVendas"`
		Media       float64 `json:"media"`
	}
	decode(t, w, &tot)
	if tot.TotalGeral != 10 || tot.ValorTotal != "55.00" || tot.TotalVendas != 1 || tot.Media != 10 {
		t.Fatalf("unexpected totals: %+v", tot)
	}
}

func TestRankingSaboresNaoColideComID(t *testing.T) {
	h, db := setupRouter(t)
	token := registrar(t, h)

	cliente := models.Cliente{Nome: "Ranqueado"}
	if err := db.Create(&cliente).Error; err != nil {
		t.Fatalf("seed cliente: %v", err)
	}
	sabor := models.Sabor{Nome: "Cupuaçu", PrecoUnitario: 5.5, Ativo: true}
	if err := db.Create(&sabor).Error; err != nil {
		t.Fatalf("seed sabor: %v", err)
	}
	venda := models.Venda{ClienteID: cliente.ID, Quantidade: 4, Valor: 22, Data: time.Now()}
	if err := db.Create(&venda).Error; err != nil {
		t.Fatalf("seed venda: %v", err)
	}
	linha := models.VendaSabor{VendaID: venda.ID, SaborID: sabor.ID, Quantidade: 4}
	if err := db.Create(&linha).Error; err != nil {
		t.Fatalf("seed linha: %v", err)
	}

	// The literal route must not be captured by GET /api/clientes/{id}.
	w := do(t, h, http.MethodGet, "/api/clientes/ranking-sabores", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var ranking []struct {
		Cliente       string `json:"cliente"`
		TotalComprado int    `json:"totalComprado"`
		SaborFavorito string `json:"saborFavorito"`
	}
	decode(t, w, &ranking)
	if len(ranking) != 1 || ranking[0].Cliente != "Ranqueado" || ranking[0].SaborFavorito != "Cupuaçu" {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/clientes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
}
