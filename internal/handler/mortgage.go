package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/property-insights/internal/metrics"
	"github.com/Dan9191/property-insights/internal/middleware"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/Dan9191/property-insights/internal/service"
	"github.com/sirupsen/logrus"
)

// CalculateMortgage handles POST /mortgage/calculate
func (h *Handler) CalculateMortgage(w http.ResponseWriter, r *http.Request) {
	var req models.MortgageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFieldErrors(w, invalidBody)
		return
	}

	res, err := mortgage.Calculate(req.Loan())
	if err != nil {
		h.mortgageError(w, r, "calculate", "Failed to calculate mortgage", err)
		return
	}
	metrics.MortgageCalculations.WithLabelValues("calculate", "ok").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": models.NewMortgageResults(res),
	})
}

type compareRequest struct {
	Scenarios json.RawMessage `json:"scenarios"`
}

// CompareMortgages handles POST /mortgage/compare
func (h *Handler) CompareMortgages(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(w, r, &req); err != nil || !isJSONArray(req.Scenarios) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Scenarios array is required",
		})
		return
	}

	var entries []models.ScenarioRequest
	if err := json.Unmarshal(req.Scenarios, &entries); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Each scenario must be an object",
		})
		return
	}

	scenarios := make([]mortgage.Scenario, 0, len(entries))
	for _, e := range entries {
		scenarios = append(scenarios, e.Scenario())
	}

	results, err := mortgage.Compare(scenarios)
	if err != nil {
		if errors.Is(err, mortgage.ErrInvalidInput) {
			metrics.MortgageCalculations.WithLabelValues("compare", "invalid").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "Invalid scenario",
				"errors":  mortgage.FieldErrors(err),
			})
			return
		}
		metrics.MortgageCalculations.WithLabelValues("compare", "error").Inc()
		h.serverError(w, r, "Failed to compare mortgages", err)
		return
	}
	metrics.MortgageCalculations.WithLabelValues("compare", "ok").Inc()
	metrics.ComparedScenarios.Observe(float64(len(results)))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"comparisons": models.NewScenarioComparisons(results),
	})
}

// ReferenceRate handles GET /mortgage/reference-rate
func (h *Handler) ReferenceRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.ReferenceRate(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to get reference rate")
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"message": "Failed to get reference rate",
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"keyRate":       rate.KeyRate,
		"margin":        rate.Margin,
		"rate":          rate.Rate,
		"effectiveDate": rate.EffectiveDate,
		"fetchedAt":     rate.FetchedAt,
	})
}

// ShareMortgage handles POST /mortgage/share
func (h *Handler) ShareMortgage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access token required")
		return
	}

	var req models.MortgageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFieldErrors(w, invalidBody)
		return
	}

	res, err := h.svc.ShareMortgage(r.Context(), userID, req.Loan())
	if err != nil {
		if errors.Is(err, mortgage.ErrInvalidInput) || errors.Is(err, mortgage.ErrComputation) {
			h.mortgageError(w, r, "share", "Failed to calculate mortgage", err)
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.WithError(err).WithField("user_id", userID).Error("Failed to share mortgage summary")
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"message": "Failed to send mortgage summary",
			"error":   err.Error(),
		})
		return
	}
	metrics.MortgageCalculations.WithLabelValues("share", "ok").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Mortgage summary sent",
		"results": models.NewMortgageResults(res),
	})
}

// mortgageError maps engine errors: field violations are a 400, anything else a 500
func (h *Handler) mortgageError(w http.ResponseWriter, r *http.Request, operation, message string, err error) {
	if errors.Is(err, mortgage.ErrInvalidInput) {
		metrics.MortgageCalculations.WithLabelValues(operation, "invalid").Inc()
		h.log.WithFields(logrus.Fields{"operation": operation, "error": err.Error()}).Debug("Rejected mortgage request")
		writeFieldErrors(w, mortgage.FieldErrors(err))
		return
	}
	metrics.MortgageCalculations.WithLabelValues(operation, "error").Inc()
	h.serverError(w, r, message, err)
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
