package api

import (
	"time"

	"github.com/hearthd/hearthd/storage"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserInfo is the externally visible shape of an account. The password
// hash never leaves the server.
type UserInfo struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func userInfo(a *storage.Account) UserInfo {
	return UserInfo{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		CreatedAt:   a.CreatedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned from a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// MeResponse is returned from GET /auth/me: the account plus its
// presentation-layer personalization.
type MeResponse struct {
	User        UserInfo          `json:"user"`
	Permissions map[string]bool   `json:"permissions"`
	Labels      map[string]string `json:"labels"`
}

// ListUsersResponse is returned from GET /admin/users.
type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
}

// CreateUserRequest is the JSON body for POST /admin/users.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
}

// UpdateUserRequest is the JSON body for PUT /admin/users/{id}. Absent
// fields are left unchanged.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Password    *string `json:"password,omitempty"`
}

// Notification is one entry in the dashboard's notification feed.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// NotificationsDoc is the wholesale notifications document.
type NotificationsDoc struct {
	Notifications []Notification `json:"notifications"`
}

// AddNotificationRequest is the JSON body for POST /notifications.
type AddNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// AddNotificationResponse is returned from POST /notifications.
type AddNotificationResponse struct {
	Notification Notification `json:"notification"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}
