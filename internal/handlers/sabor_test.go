package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docesmaloca/doces-api/internal/models"
)

func TestSaborListSomenteAtivosOrdenados(t *testing.T) {
	db := setupTestDB(t)
	h := NewSaborHandler(db, quietLogger())
	seedSabor(t, db, "Maracujá", true)
	seedSabor(t, db, "Castanha", true)
	seedSabor(t, db, "Descontinuado", false)

	req := httptest.NewRequest(http.MethodGet, "/api/sabores", nil)
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var sabores []models.Sabor
	decodeBody(t, w, &sabores)
	if len(sabores) != 2 {
		t.Fatalf("expected 2 active flavors got %d", len(sabores))
	}
	if sabores[0].Nome != "Castanha" || sabores[1].Nome != "Maracujá" {
		t.Fatalf("not name-ascending: %v", sabores)
	}
}

func TestSaborInativoPersistido(t *testing.T) {
	db := setupTestDB(t)
	criado := seedSabor(t, db, "Descontinuado", false)

	// A false Ativo must survive the insert, not be swallowed by a column
	// default.
	var armazenado models.Sabor
	if err := db.First(&armazenado, criado.ID).Error; err != nil {
		t.Fatalf("reload sabor: %v", err)
	}
	if armazenado.Ativo {
		t.Fatal("inactive flavor stored as active")
	}

	h := NewSaborHandler(db, quietLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/sabores", nil)
	w := httptest.NewRecorder()
	h.List(w, req)
	var sabores []models.Sabor
	decodeBody(t, w, &sabores)
	if len(sabores) != 0 {
		t.Fatalf("inactive flavor leaked into listing: %v", sabores)
	}
}

func TestSaborListIdempotente(t *testing.T) {
	db := setupTestDB(t)
	h := NewSaborHandler(db, quietLogger())
	seedSabor(t, db, "Tradicional", true)
	seedSabor(t, db, "Prestígio", true)

	bodies := make([]string, 2)
	for i := range bodies {
		req := httptest.NewRequest(http.MethodGet, "/api/sabores", nil)
		w := httptest.NewRecorder()
		h.List(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", w.Code)
		}
		bodies[i] = w.Body.String()
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("listing not stable without mutation:\n%s\n%s", bodies[0], bodies[1])
	}
}
