package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/auth"
	"github.com/docesmaloca/doces-api/internal/httpx"
	"github.com/docesmaloca/doces-api/internal/models"
)

type AuthHandler struct {
	DB   *gorm.DB
	Auth *auth.Service
	Log  *logrus.Logger
}

func NewAuthHandler(db *gorm.DB, svc *auth.Service, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Auth: svc, Log: log}
}

type credenciaisReq struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Registro: POST /api/auth/registro
func (h *AuthHandler) Registro(w http.ResponseWriter, r *http.Request) {
	var req credenciaisReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if strings.TrimSpace(req.Nome) == "" || req.Email == "" || req.Senha == "" {
		httpx.JSONError(w, http.StatusBadRequest, "Dados incompletos")
		return
	}

	var existente models.Usuario
	err := h.DB.Where("email = ?", req.Email).First(&existente).Error
	if err == nil {
		httpx.JSONError(w, http.StatusBadRequest, "Email já cadastrado")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.WithError(err).Error("registro: lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		h.Log.WithError(err).Error("registro: hash failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}
	usuario := models.Usuario{Nome: strings.TrimSpace(req.Nome), Email: req.Email, Senha: string(hash)}
	if err := h.DB.Create(&usuario).Error; err != nil {
		h.Log.WithError(err).Error("registro: create failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}

	token, err := h.Auth.GenerateToken(usuario)
	if err != nil {
		h.Log.WithError(err).Error("registro: token failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Usuário criado com sucesso",
		"token":   token,
		"usuario": usuario.Publico(),
	})
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credenciaisReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	var usuario models.Usuario
	if err := h.DB.Where("email = ?", strings.TrimSpace(req.Email)).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message for unknown email and wrong password.
			httpx.JSONError(w, http.StatusUnauthorized, "Email ou senha inválidos")
			return
		}
		h.Log.WithError(err).Error("login: lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao fazer login")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(usuario.Senha), []byte(req.Senha)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "Email ou senha inválidos")
		return
	}

	token, err := h.Auth.GenerateToken(usuario)
	if err != nil {
		h.Log.WithError(err).Error("login: token failed")
		httpx.JSONError(w, http.StatusInternalServerError, "Erro ao fazer login")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Login realizado com sucesso",
		"token":   token,
		"usuario": usuario.Publico(),
	})
}

// Verificar: GET /api/auth/verificar — echoes the identity resolved by the
// auth middleware.
func (h *AuthHandler) Verificar(w http.ResponseWriter, r *http.Request) {
	usuario, ok := auth.UsuarioFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "Token não fornecido")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Token válido",
		"usuario": usuario,
	})
}
