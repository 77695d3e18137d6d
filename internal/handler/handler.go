package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/Dan9191/property-insights/internal/service"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// RateProvider supplies the suggested mortgage interest rate
type RateProvider interface {
	ReferenceRate(ctx context.Context) (models.ReferenceRate, error)
}

type Handler struct {
	svc   *service.Service
	rates RateProvider
	log   *logrus.Logger
}

func NewHandler(svc *service.Service, rates RateProvider, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, rates: rates, log: log}
}

// Health reports that the API is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"message":   "Property Insights API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound is the fallback for unknown routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Route not found")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeFieldErrors(w http.ResponseWriter, fields []mortgage.FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fields})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

var invalidBody = []mortgage.FieldError{{Field: "body", Message: "Request body must be a JSON object"}}

// serverError logs err and writes the generic 500 body
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.log.WithError(err).WithField("path", r.URL.Path).Error(message)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
