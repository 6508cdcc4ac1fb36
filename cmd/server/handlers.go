package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/mercury/internal/costing"
	"github.com/Simplici0/mercury/internal/engine"
)

const (
	maxBodyBytes            = 1 << 20
	missingRequirementsText = "Missing recipe requirements"
	internalErrorText       = "Internal server error"
)

func (s *server) handleCalculateCost(w http.ResponseWriter, r *http.Request) {
	var req calculateCostRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.RecipeRequirements == nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingRequirementsText})
		return
	}

	batchSize := s.engine.Defaults().BatchSize
	if req.BatchSize != nil {
		batchSize = *req.BatchSize
	}

	quote, err := s.engine.Quote(req.RecipeRequirements.lines, batchSize)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	s.logger.Info("calculated costs for recipe",
		zap.Int("ingredients", len(req.RecipeRequirements.lines)),
		zap.Float64("batch_size", batchSize))
	s.writeJSON(w, http.StatusOK, calculateCostResponse{
		TotalBatchCost: quote.TotalBatchCost,
		CostPerItem:    quote.CostPerItem,
		SuggestedPrice: quote.SuggestedPrice,
		BatchSize:      quote.BatchSize,
	})
}

func (s *server) handleSensitivityAnalysis(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.RecipeRequirements == nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingRequirementsText})
		return
	}

	// Zero options mean "use the default", so explicit non-positive values are
	// rejected here instead of being silently replaced.
	opts := costing.SensitivityOptions{
		CostVariations: req.CostVariations,
		SizeVariations: req.SizeVariations,
	}
	if req.BatchSize != nil {
		if !(*req.BatchSize > 0) {
			s.writeEngineError(w, r, &costing.InvalidBatchSizeError{BatchSize: *req.BatchSize})
			return
		}
		opts.BatchSize = *req.BatchSize
	}
	if req.Margin != nil {
		if !(*req.Margin > 0) {
			s.writeEngineError(w, r, &costing.InvalidMarginError{Margin: *req.Margin})
			return
		}
		opts.Margin = *req.Margin
	}

	report, err := s.engine.Sensitivity(req.RecipeRequirements.lines, opts)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	s.metrics.ObserveReport(report)
	s.logger.Info("sensitivity analysis completed",
		zap.Int("ingredients", len(req.RecipeRequirements.lines)),
		zap.Int("cost_variations", len(report.CostSensitivity)),
		zap.Int("size_variations", len(report.BatchSizeSensitivity)))
	s.writeJSON(w, http.StatusOK, report)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.engine.State()
	resp := healthResponse{Status: "healthy", State: state.Name()}

	switch st := state.(type) {
	case engine.Ready:
		resp.IngredientsLoaded = true
		resp.Ingredients = len(st.Catalog)
	case engine.FailedToLoad:
		resp.Error = st.Err.Error()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// decodeJSON reads the request body into dst, writing a 400 response and
// returning false when the body is not valid JSON.
func (s *server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingRequirementsText})
		return false
	}

	s.logger.Warn("invalid request body", zap.Error(err))
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
	return false
}

func (s *server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if costing.IsValidation(err) {
		s.logger.Warn("validation error", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Error("error calculating costs", zap.String("path", r.URL.Path), zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalErrorText})
}

// writeJSON encodes body before touching the response, so an unencodable
// body becomes a 500 instead of an empty 200.
func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Error: internalErrorText})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}
