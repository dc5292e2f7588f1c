package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthd/hearthd/auth"
	"github.com/hearthd/hearthd/storage"
)

// Login handles POST /auth/login. The endpoint is public but rate
// limited per source address; the attempt is recorded before the slow
// hash comparison so an attempt that never completes still counts.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	addr := extractClientIP(r)
	if !a.limiter.checkAndRecord(addr) {
		a.audit.logFailure(AuditLoginRateLimited, r, "rate limited",
			slog.String("client_ip", addr))
		writeRateLimited(w, a.limiter.window)
		return
	}

	account, err := a.accounts.VerifyPassword(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			// Unknown username and wrong password produce the same
			// response; no enumeration oracle.
			a.audit.logFailure(AuditLoginFailure, r, "invalid credentials",
				slog.String("username", req.Username))
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		a.audit.logFailure(AuditLoginFailure, r, "credential store error",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "credential store unavailable")
		return
	}

	a.limiter.reset(addr)

	if err := a.accounts.RecordLogin(account.ID, time.Now()); err != nil {
		// Best effort; the stamp is not security-critical.
		a.audit.logger.Warn("failed to record login time",
			"username", account.Username, "error", err)
	}

	token, expiresAt, err := a.tokens.Issue(account.ID, account.Username, account.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	a.audit.logEvent(AuditLoginSuccess, r, account.Username)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userInfo(account),
	})
}

// Me handles GET /auth/me: the current account plus its permission flags
// and label overrides. An account deleted after the token was issued gets
// a 401 so the client forces a re-login; a broken store stays a 500 and
// is never dressed up as an auth failure.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	account, err := a.store.GetAccount(claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		User:        userInfo(account),
		Permissions: a.loadPermissions(account.Username),
		Labels:      a.loadLabels(account.Username),
	})
}
