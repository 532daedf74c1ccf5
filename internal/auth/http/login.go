package http

import (
	"errors"
	"net/http"

	"github.com/quollhq/tally/internal/auth/service"
	"github.com/quollhq/tally/pkg/httpx"
	"github.com/quollhq/tally/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login. Every rejection, whatever the
// cause, produces the same body so callers cannot probe for account
// existence.
type LoginHandler struct {
	SessionService *service.SessionService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeLoginFailed(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeLoginFailed(w)
		return
	}

	res, err := h.SessionService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slogx.FromContext(ctx).Error("login failed", "err", err)
		}
		writeLoginFailed(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		StatusCode:   loginSucceed,
		Message:      "login successful",
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		Expiration:   &res.ExpiresAt,
		Name:         res.DisplayName,
		Username:     res.Username,
	})
}

func writeLoginFailed(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusUnauthorized, LoginResponse{
		StatusCode: loginFailed,
		Message:    "invalid username or password",
	})
}
