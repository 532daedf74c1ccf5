package http

import (
	"errors"
	"net/http"

	"github.com/quollhq/tally/internal/auth/service"
	"github.com/quollhq/tally/pkg/httpx"
	"github.com/quollhq/tally/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register and, with Admin set, the
// admin-register variant. Duplicate usernames get the same generic message
// as other validation failures.
type RegisterHandler struct {
	AccountService *service.AccountService
	Admin          bool
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest, loginFailed, "invalid request")
		return
	}

	var err error
	if h.Admin {
		err = h.AccountService.RegisterAdmin(ctx, req.Name, req.Username, req.Password)
	} else {
		err = h.AccountService.Register(ctx, req.Name, req.Username, req.Password)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrUsernameTaken):
			writeStatus(w, http.StatusBadRequest, loginFailed, "registration failed")
		default:
			slogx.FromContext(ctx).Error("register failed", "err", err)
			writeStatus(w, http.StatusInternalServerError, loginFailed, "registration failed")
		}
		return
	}

	writeStatus(w, http.StatusCreated, loginSucceed, "user registered")
}

func writeStatus(w http.ResponseWriter, httpCode, statusCode int, msg string) {
	httpx.WriteJSON(w, httpCode, StatusResponse{
		StatusCode: statusCode,
		Message:    msg,
	})
}
