package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/httpx"
	"github.com/docesmaloca/doces-api/internal/models"
)

type SaborHandler struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewSaborHandler(db *gorm.DB, log *logrus.Logger) *SaborHandler {
	return &SaborHandler{DB: db, Log: log}
}

// List: GET /api/sabores — active flavors only, name ascending.
func (h *SaborHandler) List(w http.ResponseWriter, r *http.Request) {
	var sabores []models.Sabor
	if err := h.DB.Where("ativo = ?", true).Order("nome asc").Find(&sabores).Error; err != nil {
		h.Log.WithError(err).Error("sabores: list failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar sabores")
		return
	}
	httpx.JSON(w, http.StatusOK, sabores)
}
