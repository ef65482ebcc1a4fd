package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/docesmaloca/doces-api/internal/httpx"
	"github.com/docesmaloca/doces-api/internal/models"
)

type ctxKey string

const usuarioCtxKey = ctxKey("usuario")

const tokenTTL = 7 * 24 * time.Hour

// Claims carried inside the signed token.
type Claims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies bearer tokens and resolves them back to live
// user records on each request.
type Service struct {
	db     *gorm.DB
	secret []byte
}

func NewService(db *gorm.DB, secret string) *Service {
	return &Service{db: db, secret: []byte(secret)}
}

// GenerateToken signs a token for the user, valid for seven days.
func (s *Service) GenerateToken(u models.Usuario) (string, error) {
	claims := Claims{
		ID:    u.ID,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// resolved user to the request context. Verification failures are not
// distinguished to the caller beyond the three message variants.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.JSONError(w, http.StatusUnauthorized, "Token não fornecido")
			return
		}
		parts := strings.Fields(header)
		if len(parts) < 2 {
			httpx.JSONError(w, http.StatusUnauthorized, "Token mal formatado")
			return
		}
		claims, err := s.parseToken(parts[1])
		if err != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		// The token may outlive the account; re-check on every request.
		var usuario models.Usuario
		if err := s.db.Select("id", "nome", "email").First(&usuario, claims.ID).Error; err != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Usuário não encontrado")
			return
		}
		ctx := context.WithValue(r.Context(), usuarioCtxKey, usuario.Publico())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UsuarioFromContext extracts the identity attached by RequireAuth.
func UsuarioFromContext(ctx context.Context) (models.UsuarioPublico, bool) {
	u, ok := ctx.Value(usuarioCtxKey).(models.UsuarioPublico)
	return u, ok
}

// WithUsuario stores an identity in the context. Used by tests that call
// handlers directly without the middleware.
func WithUsuario(ctx context.Context, u models.UsuarioPublico) context.Context {
	return context.WithValue(ctx, usuarioCtxKey, u)
}
