package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/auth"
	"event-ticketing/internal/booking"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
)

type Handler struct {
	Bookings *booking.Service
	Logger   *logger.Logger
}

func NewHandler(svc *booking.Service, log *logger.Logger) *Handler {
	return &Handler{Bookings: svc, Logger: log}
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	var req models.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid request body"))
		return
	}

	result, err := h.Bookings.Book(r.Context(), claims.ID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("book ticket: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Ticket booked successfully",
		"booking": result,
	})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	bookings, err := h.Bookings.ListMine(r.Context(), claims.ID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("list my bookings: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, bookings)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Bookings.ListAll(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("list all bookings: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, bookings)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.Identity(r.Context())
	if !ok {
		apperr.Write(w, apperr.E(apperr.ErrUnauthorized, "Authentication required"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Invalid booking id"))
		return
	}

	if err := h.Bookings.Cancel(r.Context(), claims.ID, id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("cancel booking %d: %v", id, err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled successfully"})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Bookings.Stats(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("booking stats: %v", err))
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking stats fetched successfully",
		"stats":   stats,
	})
}
