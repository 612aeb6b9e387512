package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/otp"
)

// Handler serves the public OTP endpoints. The client supplies the code it
// generated; the server stores it for later verification and texts it out.
type Handler struct {
	OTP    *otp.Service
	Logger *logger.Logger
}

func NewHandler(svc *otp.Service, log *logger.Logger) *Handler {
	return &Handler{OTP: svc, Logger: log}
}

type otpRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Mobile number and OTP are required"))
		return
	}

	if err := h.OTP.Send(r.Context(), req.Mobile, req.OTP); err != nil {
		h.Logger.Error("API", fmt.Sprintf("send otp: %v", err))
		if apperr.Status(err) == http.StatusBadRequest {
			apperr.Write(w, err)
			return
		}
		apperr.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to send OTP",
		})
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "OTP sent successfully",
	})
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.E(apperr.ErrValidation, "Mobile number and OTP are required"))
		return
	}

	ok, err := h.OTP.Verify(r.Context(), req.Mobile, req.OTP)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("verify otp: %v", err))
		apperr.Write(w, err)
		return
	}
	if !ok {
		apperr.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid or expired OTP",
		})
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "OTP verified successfully",
	})
}
