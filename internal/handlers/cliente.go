package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/httpx"
	"github.com/docesmaloca/doces-api/internal/models"
	"github.com/docesmaloca/doces-api/internal/services"
	"github.com/docesmaloca/doces-api/internal/validation"
)

type ClienteHandler struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewClienteHandler(db *gorm.DB, log *logrus.Logger) *ClienteHandler {
	return &ClienteHandler{DB: db, Log: log}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

type clienteComTotal struct {
	models.Cliente
	TotalVendas int64 `json:"totalVendas"`
}

// List: GET /api/clientes — name-ascending, each with its sale count.
func (h *ClienteHandler) List(w http.ResponseWriter, r *http.Request) {
	var clientes []models.Cliente
	if err := h.DB.Order("nome asc").Find(&clientes).Error; err != nil {
		h.Log.WithError(err).Error("clientes: list failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar clientes")
		return
	}

	// One grouped count instead of a count query per client.
	type contagem struct {
		ClienteID uint
		Total     int64
	}
	var contagens []contagem
	if err := h.DB.Model(&models.Venda{}).
		Select("cliente_id, count(*) as total").
		Group("cliente_id").
		Scan(&contagens).Error; err != nil {
		h.Log.WithError(err).Error("clientes: count failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar clientes")
		return
	}
	totais := make(map[uint]int64, len(contagens))
	for _, c := range contagens {
		totais[c.ClienteID] = c.Total
	}

	resposta := make([]clienteComTotal, 0, len(clientes))
	for _, c := range clientes {
		resposta = append(resposta, clienteComTotal{Cliente: c, TotalVendas: totais[c.ID]})
	}
	httpx.JSON(w, http.StatusOK, resposta)
}

// Get: GET /api/clientes/{id} — client plus its 10 most recent sales.
func (h *ClienteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var cliente models.Cliente
	if err := h.DB.First(&cliente, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.Log.WithError(err).Error("clientes: get failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar cliente")
		return
	}
	var vendas []models.Venda
	if err := h.DB.Where("cliente_id = ?", id).Order("data desc").Limit(10).Find(&vendas).Error; err != nil {
		h.Log.WithError(err).Error("clientes: get vendas failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar cliente")
		return
	}
	var total int64
	if err := h.DB.Model(&models.Venda{}).Where("cliente_id = ?", id).Count(&total).Error; err != nil {
		h.Log.WithError(err).Error("clientes: get count failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar cliente")
		return
	}
	cliente.Vendas = vendas
	httpx.JSON(w, http.StatusOK, clienteComTotal{Cliente: cliente, TotalVendas: total})
}

type clienteReq struct {
	Nome string `json:"nome"`
}

// Create: POST /api/clientes
func (h *ClienteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clienteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if msg := validation.NomeCliente(req.Nome); msg != "" {
		httpx.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	nome := strings.TrimSpace(req.Nome)

	// Case-insensitive lookup instead of scanning the whole table.
	var existente models.Cliente
	err := h.DB.Where("LOWER(nome) = LOWER(?)", nome).First(&existente).Error
	if err == nil {
		httpx.JSONError(w, http.StatusBadRequest, "Já existe um cliente com este nome")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.WithError(err).Error("clientes: duplicate check failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao criar cliente")
		return
	}

	cliente := models.Cliente{Nome: nome}
	if err := h.DB.Create(&cliente).Error; err != nil {
		h.Log.WithError(err).Error("clientes: create failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao criar cliente")
		return
	}
	httpx.JSON(w, http.StatusCreated, cliente)
}

// Update: PUT /api/clientes/{id}
func (h *ClienteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var req clienteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if msg := validation.NomeCliente(req.Nome); msg != "" {
		httpx.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	nome := strings.TrimSpace(req.Nome)

	var cliente models.Cliente
	if err := h.DB.First(&cliente, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.Log.WithError(err).Error("clientes: update lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar cliente")
		return
	}

	var outro models.Cliente
	err := h.DB.Where("LOWER(nome) = LOWER(?) AND id <> ?", nome, id).First(&outro).Error
	if err == nil {
		httpx.JSONError(w, http.StatusBadRequest, "Já existe outro cliente com este nome")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.WithError(err).Error("clientes: update duplicate check failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar cliente")
		return
	}

	cliente.Nome = nome
	if err := h.DB.Save(&cliente).Error; err != nil {
		h.Log.WithError(err).Error("clientes: update failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar cliente")
		return
	}
	httpx.JSON(w, http.StatusOK, cliente)
}

// Delete: DELETE /api/clientes/{id} — refused while the client owns sales.
func (h *ClienteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var cliente models.Cliente
	if err := h.DB.First(&cliente, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.Log.WithError(err).Error("clientes: delete lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao deletar cliente")
		return
	}
	var vendas int64
	if err := h.DB.Model(&models.Venda{}).Where("cliente_id = ?", id).Count(&vendas).Error; err != nil {
		h.Log.WithError(err).Error("clientes: delete count failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao deletar cliente")
		return
	}
	if vendas > 0 {
		httpx.JSONError(w, http.StatusBadRequest,
			fmt.Sprintf("Cliente possui %d venda(s) registrada(s). Não é possível deletar.", vendas))
		return
	}
	if err := h.DB.Delete(&models.Cliente{}, id).Error; err != nil {
		h.Log.WithError(err).Error("clientes: delete failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao deletar cliente")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Cliente deletado com sucesso"})
}

// Estatisticas: GET /api/clientes/{id}/estatisticas
func (h *ClienteHandler) Estatisticas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var cliente models.Cliente
	if err := h.DB.First(&cliente, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.Log.WithError(err).Error("clientes: estatisticas lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar estatísticas")
		return
	}
	var vendas []models.Venda
	if err := h.DB.Where("cliente_id = ?", id).Order("data desc").Find(&vendas).Error; err != nil {
		h.Log.WithError(err).Error("clientes: estatisticas vendas failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar estatísticas")
		return
	}

	totalQuantidade := 0
	for _, v := range vendas {
		totalQuantidade += v.Quantidade
	}
	ultimas := vendas
	if len(ultimas) > 5 {
		ultimas = ultimas[:5]
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"cliente":         cliente,
		"totalQuantidade": totalQuantidade,
		"totalVendas":     len(vendas),
		"mediaQuantidade": services.MediaQuantidade(totalQuantidade, len(vendas)),
		"vendasPorMes":    services.VendasPorMes(vendas),
		"ultimasVendas":   ultimas,
	})
}

// Sabores: GET /api/clientes/{id}/sabores — the per-client flavor breakdown.
func (h *ClienteHandler) Sabores(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var cliente models.Cliente
	if err := h.DB.First(&cliente, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.Log.WithError(err).Error("clientes: sabores lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar sabores")
		return
	}
	var vendas []models.Venda
	if err := h.DB.Where("cliente_id = ?", id).Preload("Sabores.Sabor").Find(&vendas).Error; err != nil {
		h.Log.WithError(err).Error("clientes: sabores vendas failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar sabores")
		return
	}

	totalGeral, sabores := services.SaboresPorCliente(vendas)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"cliente":    cliente,
		"totalGeral": totalGeral,
		"sabores":    sabores,
	})
}

// RankingSabores: GET /api/clientes/ranking-sabores — global favorite-flavor
// ranking across every client with at least one sale line.
func (h *ClienteHandler) RankingSabores(w http.ResponseWriter, r *http.Request) {
	var linhas []models.VendaSabor
	if err := h.DB.Preload("Sabor").Preload("Venda.Cliente").Find(&linhas).Error; err != nil {
		h.Log.WithError(err).Error("clientes: ranking failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar ranking")
		return
	}
	httpx.JSON(w, http.StatusOK, services.RankingSabores(linhas))
}
