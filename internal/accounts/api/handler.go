package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"event-ticketing/internal/accounts"
	"event-ticketing/internal/apperr"
	"event-ticketing/internal/auth"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
)

// Handler serves registration, login/logout, password changes and the admin
// user-management endpoints for both account variants.
type Handler struct {
	Accounts      *accounts.Service
	Issuer        *auth.Issuer
	SecureCookies bool
	Logger        *logger.Logger
}

func NewHandler(svc *accounts.Service, issuer *auth.Issuer, secureCookies bool, log *logger.Logger) *Handler {
	return &Handler{Accounts: svc, Issuer: issuer, SecureCookies: secureCookies, Logger: log}
}

func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, models.RoleAdmin)
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, models.RoleUser)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, role string) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid request body"))
		return
	}

	acct, err := h.Accounts.Register(r.Context(), role, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("register %s: %v", role, err))
		apperr.Write(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registered successfully",
		role:      acct.Info(),
	})
}

func (h *Handler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleAdmin)
}

func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleUser)
}

// login authenticates and delivers the session token twice: as an HTTP-only
// cookie and in the body for clients that prefer the Authorization header.
func (h *Handler) login(w http.ResponseWriter, r *http.Request, role string) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid request body"))
		return
	}

	acct, err := h.Accounts.Authenticate(r.Context(), role, req.Mobile, req.Password)
	if err != nil {
		h.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("%s login failed for mobile %s", role, req.Mobile))
		apperr.Write(w, err)
		return
	}

	token, err := h.Issuer.Issue(acct.ID, role)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("issue token: %v", err))
		apperr.Write(w, err)
		return
	}

	auth.SetSessionCookie(w, token, int(h.Issuer.TTL().Seconds()), h.SecureCookies)
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		role:      acct.Info(),
	})
}

// Logout clears the session cookie. Bearer tokens the client stored itself
// stay valid until expiry; discarding them is the client's job.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.SecureCookies)
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	info, err := h.Accounts.Dashboard(r.Context(), claims.Role, claims.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{claims.Role: info})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid request body"))
		return
	}

	if err := h.Accounts.ChangePassword(r.Context(), claims.Role, claims.ID, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// ---- admin user management ----

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("list users: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid request body"))
		return
	}

	acct, err := h.Accounts.AddUser(r.Context(), req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    acct.Info(),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid user id"))
		return
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Mobile    string `json:"mobile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid request body"))
		return
	}

	info, err := h.Accounts.UpdateUser(r.Context(), id, req.FirstName, req.LastName, req.Mobile)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    info,
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid user id"))
		return
	}

	if err := h.Accounts.DeleteUser(r.Context(), id); err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
