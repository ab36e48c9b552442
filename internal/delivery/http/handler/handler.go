package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/user/listings-service/internal/delivery/http/response"
	"github.com/user/listings-service/internal/usecase"
)

type Handler struct {
	query usecase.Query
}

func NewHandler(query usecase.Query) *Handler {
	return &Handler{query: query}
}

// HandleVehicles serves one filtered, normalized page of listings.
func (h *Handler) HandleVehicles(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	vehicles, err := h.query.Vehicles(r.Context(), filter)
	if err != nil {
		slog.Error("Vehicle query failed", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, vehicles)
}

// HandleVehicleByID serves one listing with its enrichment tags.
func (h *Handler) HandleVehicleByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeJSONError(w, "Listing id is required", http.StatusBadRequest)
		return
	}

	vehicle, tags, err := h.query.Vehicle(r.Context(), id)
	if err != nil {
		slog.Error("Vehicle lookup failed", "id", id, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if vehicle == nil {
		h.writeJSONError(w, "Listing not found", http.StatusNotFound)
		return
	}

	resp := response.VehicleDetailResponse{Vehicle: *vehicle, Tags: make([]response.TagResponse, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, response.TagResponse{Attribute: t.Attribute, Value: t.Value})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleFilterOptions serves the cascading make/model selection tree.
func (h *Handler) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.query.FilterOptions(r.Context())
	if err != nil {
		slog.Error("Filter options failed", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, opts)
}

// HandleRates serves the current conversion table verbatim.
func (h *Handler) HandleRates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.query.Rates())
}

// HandleExport streams the listings-with-tags TSV feed.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.tsv"`)
	if err := h.query.ExportTSV(r.Context(), w); err != nil {
		// Headers are gone; all we can do is log.
		slog.Error("Export failed", "error", err)
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFilter(r *http.Request) (usecase.Filter, error) {
	q := r.URL.Query()
	filter := usecase.Filter{
		Page:  1,
		Make:  q.Get("make"),
		Model: q.Get("model"),
		Fuel:  q.Get("fuel"),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, errInvalidParam("page")
		}
		filter.Page = page
	}

	var err error
	if filter.MinKm, err = optionalInt(q.Get("min_km"), "min_km"); err != nil {
		return filter, err
	}
	if filter.MaxKm, err = optionalInt(q.Get("max_km"), "max_km"); err != nil {
		return filter, err
	}
	if filter.MinPriceUSD, err = optionalFloat(q.Get("min_price_usd"), "min_price_usd"); err != nil {
		return filter, err
	}
	if filter.MaxPriceUSD, err = optionalFloat(q.Get("max_price_usd"), "max_price_usd"); err != nil {
		return filter, err
	}
	return filter, nil
}

func optionalInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &val, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &val, nil
}

type paramError string

func errInvalidParam(name string) error { return paramError(name) }

func (e paramError) Error() string { return "Invalid value for parameter: " + string(e) }

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
