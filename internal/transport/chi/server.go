package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/db"
	"github.com/kailas-cloud/menurank/internal/domain"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
	"github.com/kailas-cloud/menurank/internal/logger"
	healthuc "github.com/kailas-cloud/menurank/internal/usecase/health"
	"github.com/kailas-cloud/menurank/internal/usecase/recommend"
)

const maxBodyBytes = 1 << 20

// Recommender is the recommendation use case consumed by the HTTP layer.
type Recommender interface {
	GetRecommendations(ctx context.Context, req recommend.Request) (recommend.Result, error)
	Item(ctx context.Context, itemID string) (domdoc.Document, error)
	RebuildIndex(ctx context.Context, source recommend.Source, collection string, opts ...recommend.RebuildOption) (int, error)
	Collection() string
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the recommendation HTTP API.
type Server struct {
	recommend     Recommender
	source        recommend.Source
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. source feeds POST /v1/index/rebuild.
func NewServer(rec Recommender, source recommend.Source, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		recommend: rec,
		source:    source,
		health:    health,
		logger:    logger,
	}
	// Order matters: rate limiting and rejected input also wrap the provider error.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidCatalog, http.StatusUnprocessableEntity, ErrorCodeInvalidCatalog),
		sentinelHandler(domain.ErrDuplicateDocumentID, http.StatusUnprocessableEntity, ErrorCodeInvalidCatalog),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingInvalidInput, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadGateway, ErrorCodeExtractionFailed),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, ErrorCodeIndexUnavailable),
	}
	return s
}

// ListRecommendations handles GET /v1/recommendations?q=&top_k=&candidate_k=&location=.
func (s *Server) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", query, &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter q: "+err.Error(), false)
		return
	}
	var topK, candidateK *int
	if err := runtime.BindQueryParameter("form", true, false, "top_k", query, &topK); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter top_k: "+err.Error(), false)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "candidate_k", query, &candidateK); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			"invalid parameter candidate_k: "+err.Error(), false)
		return
	}
	var location *string
	if err := runtime.BindQueryParameter("form", true, false, "location", query, &location); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter location: "+err.Error(), false)
		return
	}

	s.recommendAndWrite(w, r, RecommendationRequest{
		Query:        q,
		TopK:         topK,
		CandidateK:   candidateK,
		UserLocation: location,
	})
}

// CreateRecommendations handles POST /v1/recommendations.
func (s *Server) CreateRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error(), false)
		return
	}
	s.recommendAndWrite(w, r, req)
}

func (s *Server) recommendAndWrite(w http.ResponseWriter, r *http.Request, req RecommendationRequest) {
	res, err := s.recommend.GetRecommendations(r.Context(), recommend.Request{
		Query:        req.Query,
		Filters:      req.Filters,
		TopK:         derefInt(req.TopK),
		CandidateK:   derefInt(req.CandidateK),
		UserLocation: derefString(req.UserLocation),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := res.Recommendations
	if items == nil {
		items = []result.Recommendation{}
	}
	writeJSON(w, http.StatusOK, RecommendationResponse{
		Query:            res.Query,
		Filters:          res.Filters,
		FiltersExtracted: res.Extracted,
		Candidates:       res.Candidates,
		NoResults:        res.NoResults(),
		Items:            items,
	})
}

// GetItem handles GET /v1/items/{item_id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	doc, err := s.recommend.Item(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	m := doc.Metadata()
	writeJSON(w, http.StatusOK, ItemResponse{
		ID:                  doc.ID(),
		Text:                doc.Text(),
		ItemID:              m.ItemID,
		RestaurantID:        m.RestaurantID,
		ItemName:            m.ItemName,
		Category:            m.Category,
		Price:               m.Price,
		Veg:                 m.Veg,
		SpiceLevel:          m.SpiceLevel,
		Calories:            m.Calories,
		ChefSpecial:         m.ChefSpecial,
		RestaurantName:      m.RestaurantName,
		CuisineType:         m.CuisineType,
		AverageRating:       m.AverageRating,
		PriceRange:          m.PriceRange,
		Location:            m.Location,
		DeliveryTimeMinutes: m.DeliveryTimeMinutes,
		PureVeg:             m.PureVeg,
		PopularityScore:     m.PopularityScore,
	})
}

// RebuildIndex handles POST /v1/index/rebuild. An empty body rebuilds the served collection.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error(), false)
			return
		}
	}
	collection := req.Collection
	if collection == "" {
		collection = s.recommend.Collection()
	}

	ctx := logger.With(r.Context(), zap.String("collection", collection))
	n, err := s.recommend.RebuildIndex(ctx, s.source, collection)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RebuildResponse{Collection: collection, Indexed: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string, retryable bool) {
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Request validation messages are safe and returned in full.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidCatalog,
		domain.ErrDuplicateDocumentID,
		domain.ErrRateLimited,
		domain.ErrEmbeddingInvalidInput,
		domain.ErrEmbeddingProviderError,
		domain.ErrExtractionFailed,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func retryable(err error) bool {
	return domain.IsRetryable(err) || errors.Is(err, domain.ErrIndexUnavailable)
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg, retryable(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	if errors.Is(err, context.Canceled) {
		log.Info("request cancelled", zap.Error(err))
		return
	}
	log.Warn("domain error", zap.Error(err), zap.String("db_op", db.OpOf(err)))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error", false)
}
