package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/httpx"
	"github.com/docesmaloca/doces-api/internal/models"
	"github.com/docesmaloca/doces-api/internal/services"
	"github.com/docesmaloca/doces-api/internal/validation"
)

type VendaHandler struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewVendaHandler(db *gorm.DB, log *logrus.Logger) *VendaHandler {
	return &VendaHandler{DB: db, Log: log}
}

type saborLinhaReq struct {
	SaborID    uint `json:"saborId"`
	Quantidade int  `json:"quantidade"`
}

type vendaCreateReq struct {
	ClienteID  uint            `json:"clienteId"`
	Quantidade int             `json:"quantidade"`
	Valor      *float64        `json:"valor"`
	Data       string          `json:"data"`
	Sabores    []saborLinhaReq `json:"sabores"`
}

// parseData accepts RFC3339 timestamps or bare dates, in the local zone used
// for month windows.
func parseData(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func (h *VendaHandler) carregarVenda(id uint) (models.Venda, error) {
	var venda models.Venda
	err := h.DB.Preload("Cliente").Preload("Sabores.Sabor").First(&venda, id).Error
	return venda, err
}

// Create: POST /api/vendas — sale plus its flavor lines in one transaction.
func (h *VendaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vendaCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if msg := validation.NovaVenda(req.ClienteID, req.Quantidade); msg != "" {
		httpx.JSONError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Valor == nil || len(req.Sabores) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Dados incompletos")
		return
	}
	for _, s := range req.Sabores {
		if s.SaborID == 0 || s.Quantidade <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "Dados incompletos")
			return
		}
	}

	var cliente models.Cliente
	if err := h.DB.First(&cliente, req.ClienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
			return
		}
		h.Log.WithError(err).Error("vendas: cliente lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao registrar venda")
		return
	}

	data := time.Now()
	if req.Data != "" {
		parsed, err := parseData(req.Data)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "Data inválida")
			return
		}
		data = parsed
	}

	venda := models.Venda{
		ClienteID:  req.ClienteID,
		Quantidade: req.Quantidade,
		Valor:      *req.Valor,
		Data:       data,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&venda).Error; err != nil {
			return err
		}
		linhas := make([]models.VendaSabor, 0, len(req.Sabores))
		for _, s := range req.Sabores {
			linhas = append(linhas, models.VendaSabor{VendaID: venda.ID, SaborID: s.SaborID, Quantidade: s.Quantidade})
		}
		return tx.Create(&linhas).Error
	})
	if err != nil {
		h.Log.WithError(err).Error("vendas: create failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao registrar venda")
		return
	}

	completa, err := h.carregarVenda(venda.ID)
	if err != nil {
		h.Log.WithError(err).Error("vendas: reload failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao registrar venda")
		return
	}
	httpx.JSON(w, http.StatusCreated, completa)
}

// filtroVendas applies the month/range/client filters from the query string.
// An explicit dataInicio+dataFim range takes precedence over mes+ano.
func filtroVendas(db *gorm.DB, q map[string]string) (*gorm.DB, error) {
	mes, _ := strconv.Atoi(q["mes"])
	ano, _ := strconv.Atoi(q["ano"])
	if q["dataInicio"] != "" && q["dataFim"] != "" {
		inicio, err := parseData(q["dataInicio"])
		if err != nil {
			return nil, err
		}
		fim, err := parseData(q["dataFim"])
		if err != nil {
			return nil, err
		}
		// End of day inclusive.
		fim = time.Date(fim.Year(), fim.Month(), fim.Day(), 23, 59, 59, 0, fim.Location())
		db = db.Where("data BETWEEN ? AND ?", inicio, fim)
	} else if mes >= 1 && mes <= 12 && ano > 0 {
		inicio, fim := services.JanelaMes(ano, mes)
		db = db.Where("data BETWEEN ? AND ?", inicio, fim)
	}
	if q["clienteId"] != "" {
		clienteID, err := strconv.Atoi(q["clienteId"])
		if err != nil {
			return nil, err
		}
		db = db.Where("cliente_id = ?", clienteID)
	}
	return db, nil
}

func queryMap(r *http.Request, keys ...string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[k] = r.URL.Query().Get(k)
	}
	return m
}

// List: GET /api/vendas — newest first, nested client and flavor lines.
func (h *VendaHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq, err := filtroVendas(h.DB.Model(&models.Venda{}), queryMap(r, "mes", "ano", "dataInicio", "dataFim", "clienteId"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Filtros inválidos")
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dbq = dbq.Limit(n)
		}
	}
	var vendas []models.Venda
	if err := dbq.Preload("Cliente").Preload("Sabores.Sabor").Order("data desc").Find(&vendas).Error; err != nil {
		h.Log.WithError(err).Error("vendas: list failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar vendas")
		return
	}
	httpx.JSON(w, http.StatusOK, vendas)
}

// Get: GET /api/vendas/{id}
func (h *VendaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	venda, err := h.carregarVenda(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Venda não encontrada")
			return
		}
		h.Log.WithError(err).Error("vendas: get failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao buscar venda")
		return
	}
	httpx.JSON(w, http.StatusOK, venda)
}

type vendaUpdateReq struct {
	ClienteID  *uint            `json:"clienteId"`
	Quantidade *int             `json:"quantidade"`
	Valor      *float64         `json:"valor"`
	Data       *string          `json:"data"`
	Sabores    *[]saborLinhaReq `json:"sabores"`
}

// Update: PUT /api/vendas/{id} — only supplied fields change; a supplied
// sabores array replaces all existing lines. Runs as one transaction.
func (h *VendaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var req vendaUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	var venda models.Venda
	if err := h.DB.First(&venda, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Venda não encontrada")
			return
		}
		h.Log.WithError(err).Error("vendas: update lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar venda")
		return
	}

	if req.ClienteID != nil {
		var cliente models.Cliente
		if err := h.DB.First(&cliente, *req.ClienteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "Cliente não encontrado")
				return
			}
			h.Log.WithError(err).Error("vendas: update cliente lookup failed")
			httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar venda")
			return
		}
		venda.ClienteID = *req.ClienteID
	}
	if req.Quantidade != nil {
		if *req.Quantidade <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "Quantidade deve ser maior que zero")
			return
		}
		venda.Quantidade = *req.Quantidade
	}
	if req.Valor != nil {
		venda.Valor = *req.Valor
	}
	if req.Data != nil {
		parsed, err := parseData(*req.Data)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "Data inválida")
			return
		}
		venda.Data = parsed
	}
	if req.Sabores != nil {
		for _, s := range *req.Sabores {
			if s.SaborID == 0 || s.Quantidade <= 0 {
				httpx.JSONError(w, http.StatusBadRequest, "Dados incompletos")
				return
			}
		}
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&venda).Error; err != nil {
			return err
		}
		if req.Sabores == nil {
			return nil
		}
		// Wholesale replacement: simpler than diffing and the line sets are tiny.
		if err := tx.Where("venda_id = ?", venda.ID).Delete(&models.VendaSabor{}).Error; err != nil {
			return err
		}
		if len(*req.Sabores) == 0 {
			return nil
		}
		linhas := make([]models.VendaSabor, 0, len(*req.Sabores))
		for _, s := range *req.Sabores {
			linhas = append(linhas, models.VendaSabor{VendaID: venda.ID, SaborID: s.SaborID, Quantidade: s.Quantidade})
		}
		return tx.Create(&linhas).Error
	})
	if err != nil {
		h.Log.WithError(err).Error("vendas: update failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar venda")
		return
	}

	completa, err := h.carregarVenda(venda.ID)
	if err != nil {
		h.Log.WithError(err).Error("vendas: update reload failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao atualizar venda")
		return
	}
	httpx.JSON(w, http.StatusOK, completa)
}

// Delete: DELETE /api/vendas/{id} — removes the sale and its lines together.
func (h *VendaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var venda models.Venda
	if err := h.DB.First(&venda, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Venda não encontrada")
			return
		}
		h.Log.WithError(err).Error("vendas: delete lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao deletar venda")
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venda_id = ?", id).Delete(&models.VendaSabor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Venda{}, id).Error
	})
	if err != nil {
		h.Log.WithError(err).Error("vendas: delete failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao deletar venda")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Venda deletada com sucesso"})
}

// Totais: GET /api/vendas/totais — aggregates over the filtered sales.
func (h *VendaHandler) Totais(w http.ResponseWriter, r *http.Request) {
	dbq, err := filtroVendas(h.DB.Model(&models.Venda{}), queryMap(r, "mes", "ano", "clienteId"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Filtros inválidos")
		return
	}
	var vendas []models.Venda
	if err := dbq.Preload("Cliente").Find(&vendas).Error; err != nil {
		h.Log.WithError(err).Error("vendas: totais failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao calcular totais")
		return
	}
	httpx.JSON(w, http.StatusOK, services.Totais(vendas))
}

// RelatorioMensal: GET /api/vendas/relatorio-mensal?ano=YYYY — twelve
// calendar-month entries, re-queried per month window.
func (h *VendaHandler) RelatorioMensal(w http.ResponseWriter, r *http.Request) {
	ano := time.Now().Year()
	if v := r.URL.Query().Get("ano"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "Ano inválido")
			return
		}
		ano = n
	}

	meses := make([]services.ResumoMensal, 0, 12)
	for mes := 1; mes <= 12; mes++ {
		inicio, fim := services.JanelaMes(ano, mes)
		var vendas []models.Venda
		if err := h.DB.Where("data BETWEEN ? AND ?", inicio, fim).Find(&vendas).Error; err != nil {
			h.Log.WithError(err).Error("vendas: relatorio mensal failed")
			httpx.JSONError(w, http.StatusInternalServerError, "Erro ao gerar relatório mensal")
			return
		}
		meses = append(meses, services.ResumirMes(mes, vendas))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ano": ano, "meses": meses})
}
