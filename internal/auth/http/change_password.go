package http

import (
	"errors"
	"net/http"

	"github.com/quollhq/tally/internal/auth/service"
	"github.com/quollhq/tally/pkg/httpx"
	"github.com/quollhq/tally/pkg/slogx"
)

// ChangePasswordHandler serves POST /v1/auth/change-password. The subject is
// the bearer identity. A successful change clears the caller's session, so
// the client must log in again afterwards.
type ChangePasswordHandler struct {
	AccountService *service.AccountService
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := httpx.UsernameFromCtx(ctx)
	if username == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"})
		return
	}

	var req ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest, loginFailed, "invalid request")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeStatus(w, http.StatusBadRequest, loginFailed, "passwords do not match")
		return
	}

	err := h.AccountService.ChangePassword(ctx, username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeStatus(w, http.StatusUnauthorized, loginFailed, "invalid credentials")
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrPasswordReused):
			writeStatus(w, http.StatusBadRequest, loginFailed, "password change rejected")
		default:
			slogx.FromContext(ctx).Error("change password failed", "err", err)
			writeStatus(w, http.StatusInternalServerError, loginFailed, "password change failed")
		}
		return
	}

	writeStatus(w, http.StatusOK, loginSucceed, "password changed")
}
