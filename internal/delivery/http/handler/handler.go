package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/delivery/http/request"
	"github.com/user/advisory-service/internal/delivery/http/response"
	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/internal/usecase"
)

// PingFunc checks one backing service for the health endpoint.
type PingFunc func(ctx context.Context) error

type Handler struct {
	manager   usecase.ScrapeManager
	countries repository.CountryReader
	checks    map[string]PingFunc
	logger    *zap.Logger
}

func NewHandler(manager usecase.ScrapeManager, countries repository.CountryReader, checks map[string]PingFunc, logger *zap.Logger) *Handler {
	return &Handler{
		manager:   manager,
		countries: countries,
		checks:    checks,
		logger:    logger,
	}
}

func (h *Handler) HandleSubmitScrape(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Countries) == 0 {
		h.writeJSONError(w, "countries list cannot be empty", http.StatusBadRequest)
		return
	}
	for _, c := range req.Countries {
		if strings.TrimSpace(c) == "" {
			h.writeJSONError(w, "country names cannot be blank", http.StatusBadRequest)
			return
		}
	}

	resp := response.SubmitScrapeResponse{Status: "success", Message: "countries submitted for scraping"}
	queued := 0
	for _, country := range req.Countries {
		country = strings.TrimSpace(country)
		jobID, err := h.manager.Submit(r.Context(), country, req.Force)
		switch {
		case errors.Is(err, usecase.ErrRecentlyScraped):
			resp.Jobs = append(resp.Jobs, response.ScrapeJob{Country: country, JobID: jobID, Status: "skipped", Reason: err.Error()})
		case err != nil:
			h.logger.Error("failed to submit country", zap.String("country", country), zap.Error(err))
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
			return
		default:
			queued++
			resp.Jobs = append(resp.Jobs, response.ScrapeJob{Country: country, JobID: jobID, Status: "queued"})
		}
	}

	if queued == 0 {
		resp.Status = "error"
		resp.Message = usecase.ErrRecentlyScraped.Error()
		h.writeJSON(w, http.StatusConflict, resp)
		return
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) HandleGetScrapeStatus(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		h.writeJSONError(w, "country query parameter is required", http.StatusBadRequest)
		return
	}

	status, err := h.manager.GetStatus(r.Context(), country)
	if err != nil {
		h.logger.Error("failed to get scrape status", zap.String("country", country), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if status.CurrentStatus == entity.StatusNotFound {
		h.writeJSONError(w, "Scrape status not found for the given country", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ScrapeStatusResponse{
		Country:        status.Country,
		CurrentStatus:  status.CurrentStatus,
		LastScrapedAt:  status.LastScrapedAt,
		FailedSections: status.FailedSections,
	})
}

func (h *Handler) HandleGetAdvisory(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")

	advisory, err := h.manager.GetAdvisory(r.Context(), country)
	if errors.Is(err, repository.ErrNotFound) {
		h.writeJSONError(w, "No advisory stored for the given country", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get advisory", zap.String("country", country), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.AdvisoryResponse{
		Country:   advisory.Country,
		ScrapedAt: advisory.ScrapedAt,
		Sections:  advisory.Sections,
	})
}

func (h *Handler) HandleGetCountryTable(w http.ResponseWriter, r *http.Request) {
	countryID := chi.URLParam(r, "id")
	table := chi.URLParam(r, "table")

	if !usecase.IsChildTable(table) {
		h.writeJSONError(w, "Unknown table", http.StatusNotFound)
		return
	}

	rows, err := h.countries.Children(r.Context(), table, countryID)
	if err != nil {
		h.logger.Error("failed to read country rows", zap.String("country_id", countryID), zap.String("table", table), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []entity.Row{}
	}

	h.writeJSON(w, http.StatusOK, response.CountryRowsResponse{CountryID: countryID, Table: table, Rows: rows})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(h.checks))
	healthy := true
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
