package http

import (
	"errors"
	"net/http"

	"github.com/quollhq/tally/internal/auth/service"
	"github.com/quollhq/tally/pkg/httpx"
	"github.com/quollhq/tally/pkg/slogx"
)

// RevokeHandler serves POST /v1/auth/revoke. The subject comes from the
// validated bearer token, never from the body, so a caller can only log out
// their own session. Revoking when no session exists still returns 200:
// logout is idempotent.
type RevokeHandler struct {
	SessionService *service.SessionService
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := httpx.UsernameFromCtx(ctx)
	if username == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"})
		return
	}

	if err := h.SessionService.Revoke(ctx, username); err != nil {
		if !errors.Is(err, service.ErrUserNotFound) {
			slogx.FromContext(ctx).Error("revoke failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
			return
		}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
