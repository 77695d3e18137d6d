package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/Dan9191/property-insights/internal/middleware"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/Dan9191/property-insights/internal/service"
	"github.com/gorilla/mux"
)

type propertyRequest struct {
	Location     string          `json:"location"`
	Area         models.Number   `json:"area"`
	Price        models.Number   `json:"price"`
	PropertyType string          `json:"propertyType"`
	Amenities    json.RawMessage `json:"amenities"`
	Description  string          `json:"description"`
}

// CreateProperty handles POST /properties/add
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req propertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFieldErrors(w, invalidBody)
		return
	}

	in := service.PropertyInput{
		Location:     req.Location,
		Area:         req.Area,
		Price:        req.Price,
		PropertyType: req.PropertyType,
		Description:  req.Description,
	}
	if len(req.Amenities) > 0 && string(req.Amenities) != "null" {
		if err := json.Unmarshal(req.Amenities, &in.Amenities); err != nil {
			in.AmenitiesInvalid = true
		}
	}

	p, err := h.svc.CreateProperty(r.Context(), userID, in)
	if errors.Is(err, mortgage.ErrInvalidInput) {
		writeFieldErrors(w, mortgage.FieldErrors(err))
		return
	}
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Property added successfully",
		"property": p,
	})
}

// ListProperties handles GET /properties
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	properties, err := h.svc.ListProperties(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(properties),
		"properties": properties,
	})
}

// GetProperty handles GET /properties/{id}
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.propertyTarget(w, r)
	if !ok {
		return
	}

	p, err := h.svc.GetProperty(r.Context(), userID, id)
	if errors.Is(err, service.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"property": p})
}

// DeleteProperty handles DELETE /properties/{id}
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.propertyTarget(w, r)
	if !ok {
		return
	}

	err := h.svc.DeleteProperty(r.Context(), userID, id)
	if errors.Is(err, service.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "Server error", err)
		return
	}
	writeMessage(w, http.StatusOK, "Property deleted successfully")
}

// PropertyMortgage handles POST /properties/{id}/mortgage
func (h *Handler) PropertyMortgage(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.propertyTarget(w, r)
	if !ok {
		return
	}

	var req models.MortgageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFieldErrors(w, invalidBody)
		return
	}

	_, res, err := h.svc.PropertyMortgage(r.Context(), userID, id, req)
	if errors.Is(err, service.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		h.mortgageError(w, r, "property", "Failed to calculate mortgage", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"propertyId": id,
		"results":    models.NewMortgageResults(res),
	})
}

// propertyTarget resolves the caller and the {id} path variable.
// Unparseable ids are reported as missing properties.
func (h *Handler) propertyTarget(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return 0, 0, false
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusNotFound, "Property not found")
		return 0, 0, false
	}
	return userID, id, true
}

type comparePropertiesRequest struct {
	PropertyIDs json.RawMessage `json:"propertyIds"`
}

// CompareProperties handles POST /compare
func (h *Handler) CompareProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req comparePropertiesRequest
	if err := decodeJSON(w, r, &req); err != nil || !isJSONArray(req.PropertyIDs) {
		writeMessage(w, http.StatusBadRequest, "Property IDs array is required")
		return
	}
	var raw []models.Number
	if err := json.Unmarshal(req.PropertyIDs, &raw); err != nil {
		writeMessage(w, http.StatusBadRequest, "Property IDs array is required")
		return
	}

	// ids that are not positive integers cannot belong to the caller
	ids := make([]int64, 0, len(raw))
	for _, n := range raw {
		v := n.Float()
		if v != math.Trunc(v) || v < 1 || v > math.MaxInt64/2 {
			v = 0
		}
		ids = append(ids, int64(v))
	}

	comparison, err := h.svc.CompareProperties(r.Context(), userID, ids)
	switch {
	case errors.Is(err, mortgage.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, mortgage.FieldErrors(err)[0].Message)
		return
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Some properties not found or you do not have access")
		return
	case err != nil:
		h.serverError(w, r, "Error comparing properties", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"comparison": comparison,
	})
}
