package http

import (
	"errors"
	"net/http"

	"github.com/quollhq/tally/internal/auth/service"
	"github.com/quollhq/tally/pkg/httpx"
	"github.com/quollhq/tally/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh. The access token may be
// expired; everything else about it must check out. Rejections are 401 with
// a coarse error string so the response does not reveal which check failed
// beyond what the client needs to recover (re-login).
type RefreshHandler struct {
	SessionService *service.SessionService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
		return
	}

	pair, err := h.SessionService.Refresh(ctx, req.AccessToken, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAccessToken),
			errors.Is(err, service.ErrNoActiveSession),
			errors.Is(err, service.ErrRefreshRejected):
			httpx.NoCache(w)
			httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"})
		default:
			slogx.FromContext(ctx).Error("refresh failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
