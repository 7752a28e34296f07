// Package api exposes the quota ledger over a small JSON HTTP surface.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Brandon7CC/MODELFORGE/internal/ledger"
	"github.com/Brandon7CC/MODELFORGE/pkg/quota"
)

// Config wires dependencies for the HTTP handler.
type Config struct {
	Backend ledger.Backend
	Now     func() time.Time
}

// NewHandler builds the quotad HTTP handler.
func NewHandler(cfg Config) http.Handler {
	h := &handler{backend: cfg.Backend, nowFn: cfg.Now}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/reserve", h.handleReserve)
	mux.HandleFunc("/v1/complete", h.handleComplete)
	mux.HandleFunc("/v1/limits", h.handleLimits)
	return mux
}

type handler struct {
	backend ledger.Backend
	nowFn   func() time.Time
}

func (h *handler) now() time.Time {
	if h.nowFn != nil {
		return h.nowFn()
	}
	return time.Now()
}

func (h *handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.backend == nil {
		writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	var req quota.ReserveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.LeaseID == "" || req.Key == "" || req.Units == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	res, err := h.backend.Reserve(r.Context(), req, h.now())
	if err != nil {
		writeJSON(w, http.StatusOK, quota.ReserveResponse{Allowed: false, Error: "backend_error"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.backend == nil {
		writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	var req quota.CompleteRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.LeaseID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	res, err := h.backend.Complete(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusOK, quota.CompleteResponse{Ok: false, Error: "backend_error"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleLimits(w http.ResponseWriter, r *http.Request) {
	if h.backend == nil {
		writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.handlePutLimit(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, quota.LimitsFile{Limits: h.backend.Definitions()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) handlePutLimit(w http.ResponseWriter, r *http.Request) {
	var def quota.LimitDefinition
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	def.Key = quota.LimitKey(strings.TrimSpace(string(def.Key)))
	def.Unit = strings.TrimSpace(def.Unit)
	def.Description = strings.TrimSpace(def.Description)
	if def.Key == "" || def.Capacity == 0 || def.WindowSeconds <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := h.backend.ApplyDefinition(r.Context(), def); err != nil {
		writeError(w, http.StatusInternalServerError, "backend_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
