package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/transport"
	"github.com/frahmantamala/grafana-sync/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	CurrentUser(ctx context.Context, userID string) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// Me returns the console user behind the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.CurrentUser(r.Context(), internal.OperatorFromContext(r.Context()).UserID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, r, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.WriteAppError(w, r, err)
			return
		}

		ctx := internal.ContextWithOperator(r.Context(), internal.Operator{
			UserID:   claims.UserID,
			Username: claims.Username,
		})
		ctx = logger.With(ctx, "console_user", claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
