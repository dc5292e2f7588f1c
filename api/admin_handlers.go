package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hearthd/hearthd/auth"
)

func labelsDocName(username string) string      { return "labels:" + username }
func permissionsDocName(username string) string { return "permissions:" + username }

// ListUsers handles GET /admin/users.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.store.ListAccounts()
	if err != nil {
		mapError(w, err)
		return
	}
	users := make([]UserInfo, 0, len(accounts))
	for _, acc := range accounts {
		users = append(users, userInfo(acc))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, ListUsersResponse{Users: users})
}

// CreateUser handles POST /admin/users.
func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CreateUserRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	account, err := a.accounts.Create(req.Username, req.Password, req.DisplayName, req.Role)
	if err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditUserCreated, r, account.Username)
	writeJSON(w, http.StatusCreated, userInfo(account))
}

// UpdateUser handles PUT /admin/users/{id}. Absent fields stay unchanged;
// a supplied password is re-hashed.
func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	req, ok := decodeJSON[UpdateUserRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	account, err := a.accounts.Update(id, auth.Update{
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Password:    req.Password,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditUserUpdated, r, account.Username)
	writeJSON(w, http.StatusOK, userInfo(account))
}

// DeleteUser handles DELETE /admin/users/{id}. An admin cannot delete the
// account it is currently signed in with; this check lives here because
// the store has no notion of the caller.
func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	claims := claimsFromContext(r.Context())
	if claims.UserID == id {
		writeError(w, http.StatusForbidden, "cannot delete the account you are signed in with")
		return
	}
	account, err := a.store.GetAccount(id)
	if err != nil {
		mapError(w, err)
		return
	}
	if err := a.accounts.Delete(id); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditUserDeleted, r, account.Username)
	writeJSON(w, http.StatusOK, struct{}{})
}

// GetLabels handles GET /admin/labels/{username}.
func (a *API) GetLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.loadLabels(chi.URLParam(r, "username")))
}

// PutLabels handles PUT /admin/labels/{username}: the write replaces the
// whole per-user document.
func (a *API) PutLabels(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	labels, ok := decodeJSON[map[string]string](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := a.putDoc(labelsDocName(username), labels); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditLabelsUpdated, r, username)
	writeJSON(w, http.StatusOK, struct{}{})
}

// GetPermissions handles GET /admin/permissions/{username}.
func (a *API) GetPermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.loadPermissions(chi.URLParam(r, "username")))
}

// PutPermissions handles PUT /admin/permissions/{username}: wholesale
// replacement, no merge.
func (a *API) PutPermissions(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	perms, ok := decodeJSON[map[string]bool](w, r, maxBodySize)
	if !ok {
		return
	}
	if err := a.putDoc(permissionsDocName(username), perms); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditPermissionsUpdated, r, username)
	writeJSON(w, http.StatusOK, struct{}{})
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

// loadLabels returns the user's label overrides; a missing document is an
// empty map, not an error.
func (a *API) loadLabels(username string) map[string]string {
	labels := map[string]string{}
	data, err := a.store.GetDocument(labelsDocName(username))
	if err == nil {
		_ = json.Unmarshal(data, &labels)
	}
	return labels
}

// loadPermissions returns the user's feature-visibility flags; a missing
// document is an empty map.
func (a *API) loadPermissions(username string) map[string]bool {
	perms := map[string]bool{}
	data, err := a.store.GetDocument(permissionsDocName(username))
	if err == nil {
		_ = json.Unmarshal(data, &perms)
	}
	return perms
}

func (a *API) putDoc(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return a.store.PutDocument(name, data)
}
