package api

import (
	"fmt"
	"net/http"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/auth"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/profile"
	"event-ticketing/internal/upload"
)

// Handler serves profile reads and multipart profile updates for whichever
// role the route group was registered under.
type Handler struct {
	Profile *profile.Service
	Uploads *upload.Store
	Logger  *logger.Logger
}

func NewHandler(svc *profile.Service, uploads *upload.Store, log *logger.Logger) *Handler {
	return &Handler{Profile: svc, Uploads: uploads, Logger: log}
}

// imageField matches the form field names the frontend posts per role.
func imageField(role string) (string, upload.Purpose) {
	if role == models.RoleAdmin {
		return "admin_profile_image", upload.PurposeAdminProfileImage
	}
	return "profile_image", upload.PurposeProfileImage
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	p, err := h.Profile.Get(r.Context(), claims.Role, claims.ID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("get %s profile: %v", claims.Role, err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Profile fetched successfully",
		claims.Role: p,
	})
}

// Update accepts a multipart form with the text fields and an optional image
// file. The image is stored before the upsert so a failed save never leaves
// the record pointing at a file that was not written.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	if err := r.ParseMultipartForm(upload.DefaultMaxFileSize); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid multipart form"))
		return
	}

	upd := models.ProfileUpdate{
		FirstName:   r.FormValue("first_name"),
		LastName:    r.FormValue("last_name"),
		Email:       r.FormValue("email"),
		DateOfBirth: r.FormValue("date_of_birth"),
		Address:     r.FormValue("address"),
	}

	field, purpose := imageField(claims.Role)
	if _, fh, err := r.FormFile(field); err == nil {
		key, err := h.Uploads.Save(fh, purpose)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		upd.NewImage = key
	}

	p, err := h.Profile.Update(r.Context(), claims.Role, claims.ID, upd)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("update %s profile: %v", claims.Role, err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Profile updated successfully",
		claims.Role: p,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	if err := h.Profile.Delete(r.Context(), claims.Role, claims.ID); err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Profile details deleted successfully"})
}
