package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mediscan/db"
	"mediscan/ml"
	"mediscan/monitoring"
)

var (
	errEmptyBody = errors.New("no data provided")
	errBadJSON   = errors.New("request body must be a JSON object")
)

// HandlersConfig wires the scoring endpoints to their collaborators. Hub,
// Persist and Recent are optional.
type HandlersConfig struct {
	Store     *ml.Store
	Hub       *monitoring.Hub
	Logger    *zap.Logger
	CacheSize int
	Persist   func(ml.Prediction) error
	Recent    func(limit int) ([]db.PredictionRecord, error)
}

// Handlers is the transport boundary: it decodes requests, runs the scoring
// pipeline, and maps pipeline error kinds to HTTP statuses.
type Handlers struct {
	store   *ml.Store
	hub     *monitoring.Hub
	logger  *zap.Logger
	cache   *lru.Cache[string, ml.Prediction]
	persist func(ml.Prediction) error
	recent  func(limit int) ([]db.PredictionRecord, error)
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	h := &Handlers{
		store:   cfg.Store,
		hub:     cfg.Hub,
		logger:  cfg.Logger,
		persist: cfg.Persist,
		recent:  cfg.Recent,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if cfg.CacheSize > 0 {
		// lru.New only fails on a non-positive size.
		h.cache, _ = lru.New[string, ml.Prediction](cfg.CacheSize)
	}
	return h
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("POST /predict/ensemble", h.handlePredictEnsemble)
	mux.HandleFunc("GET /predictions/recent", h.handleRecent)
	mux.Handle("GET /metrics", promhttp.Handler())
	if h.hub != nil {
		mux.Handle("GET /ws", h.hub)
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := h.store.Loaded()
	status := "healthy"
	if !loaded {
		status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        status,
		"models_loaded": loaded,
	})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	h.score(w, r, false)
}

func (h *Handlers) handlePredictEnsemble(w http.ResponseWriter, r *http.Request) {
	h.score(w, r, true)
}

func (h *Handlers) score(w http.ResponseWriter, r *http.Request, ensemble bool) {
	bundle, err := h.store.Bundle()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Models not loaded")
		return
	}

	body, panel, err := decodePanel(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	model := ml.ModelGradientBoosting
	if ensemble {
		model = ml.ModelEnsemble
	}
	// The store generation keys out cached results from a replaced bundle.
	cacheKey := strconv.FormatUint(h.store.Generation(), 10) + "|" + model + "|" + string(body)
	if h.cache != nil {
		if pred, ok := h.cache.Get(cacheKey); ok {
			predictionCacheEvents.WithLabelValues("hit").Inc()
			writeJSON(w, http.StatusOK, pred)
			return
		}
		predictionCacheEvents.WithLabelValues("miss").Inc()
	}

	var pred ml.Prediction
	if ensemble {
		pred, err = bundle.PredictEnsemble(panel)
	} else {
		pred, err = bundle.Predict(panel)
	}
	if err != nil {
		h.logger.Error("prediction failed", zap.String("model", model), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	predictionsTotal.WithLabelValues(pred.Model, pred.RiskLevel).Inc()
	if h.cache != nil {
		h.cache.Add(cacheKey, pred)
	}
	if h.persist != nil {
		if err := h.persist(pred); err != nil {
			h.logger.Warn("failed to persist prediction", zap.Error(err))
		}
	}
	if h.hub != nil {
		h.hub.Publish(pred)
	}

	writeJSON(w, http.StatusOK, pred)
}

func (h *Handlers) handleRecent(w http.ResponseWriter, r *http.Request) {
	if h.recent == nil {
		writeError(w, http.StatusNotFound, "prediction history not enabled")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := h.recent(limit)
	if err != nil {
		h.logger.Error("failed to read prediction history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read prediction history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": records})
}

// decodePanel reads the request body and decodes it into a lab panel.
// Empty, null, and non-object bodies are rejected; individual odd field
// values are not, they degrade to defaults inside the panel.
func decodePanel(r *http.Request) ([]byte, ml.LabPanel, error) {
	var panel ml.LabPanel
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, panel, errBadJSON
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, panel, errEmptyBody
	}
	if body[0] != '{' {
		return nil, panel, errBadJSON
	}
	if err := json.Unmarshal(body, &panel); err != nil {
		return nil, panel, errBadJSON
	}
	return body, panel, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
