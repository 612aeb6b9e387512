package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/events"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/upload"
)

// Handler exposes the event catalog. Reads are public, writes are mounted
// behind the admin middleware.
type Handler struct {
	Events  *events.Service
	Uploads *upload.Store
	Logger  *logger.Logger
}

func NewHandler(svc *events.Service, uploads *upload.Store, log *logger.Logger) *Handler {
	return &Handler{Events: svc, Uploads: uploads, Logger: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Events.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("list events: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Events fetched successfully",
		"events":  list,
	})
}

// Create accepts a multipart form: title, date, venue, price and an optional
// event_image file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.DefaultMaxFileSize); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid multipart form"))
		return
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Price must be a number"))
		return
	}

	var image string
	if _, fh, err := r.FormFile("event_image"); err == nil {
		key, err := h.Uploads.Save(fh, upload.PurposeEventImage)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		image = key
	}

	event, err := h.Events.Create(r.Context(), r.FormValue("title"), r.FormValue("date"), r.FormValue("venue"), price, image)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("create event: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Event created successfully",
		"event":   event,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid event id"))
		return
	}

	if err := r.ParseMultipartForm(upload.DefaultMaxFileSize); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid multipart form"))
		return
	}

	var upd models.EventUpdate
	if v := r.FormValue("title"); v != "" {
		upd.Title = &v
	}
	if v := r.FormValue("date"); v != "" {
		upd.Date = &v
	}
	if v := r.FormValue("venue"); v != "" {
		upd.Venue = &v
	}
	if v := r.FormValue("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			apperr.Write(w, apperr.E(apperr.ErrValidation, "Price must be a number"))
			return
		}
		upd.Price = &price
	}
	if _, fh, err := r.FormFile("event_image"); err == nil {
		key, err := h.Uploads.Save(fh, upload.PurposeEventImage)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		upd.NewImage = key
	}

	event, err := h.Events.Update(r.Context(), id, upd)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("update event %d: %v", id, err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Event updated successfully",
		"event":   event,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid event id"))
		return
	}

	if err := h.Events.Delete(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("delete event %d: %v", id, err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}
