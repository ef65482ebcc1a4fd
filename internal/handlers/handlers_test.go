package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Usuario{}, &models.Cliente{}, &models.Sabor{}, &models.Venda{}, &models.VendaSabor{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
}

func errMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func seedCliente(t *testing.T, db *gorm.DB, nome string) models.Cliente {
	t.Helper()
	c := models.Cliente{Nome: nome}
	mustCreate(t, db, &c)
	return c
}

func seedSabor(t *testing.T, db *gorm.DB, nome string, ativo bool) models.Sabor {
	t.Helper()
	s := models.Sabor{Nome: nome, PrecoUnitario: 5.5, Ativo: ativo}
	mustCreate(t, db, &s)
	return s
}

func seedVenda(t *testing.T, db *gorm.DB, cliente models.Cliente, quantidade int, valor float64, data time.Time, linhas ...models.VendaSabor) models.Venda {
	t.Helper()
	v := models.Venda{ClienteID: cliente.ID, Quantidade: quantidade, Valor: valor, Data: data}
	mustCreate(t, db, &v)
	for i := range linhas {
		linhas[i].VendaID = v.ID
		mustCreate(t, db, &linhas[i])
	}
	return v
}
