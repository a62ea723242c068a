package gateway

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/driftbase/driftbase/ingest"
	"github.com/driftbase/driftbase/pkg/apierr"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/retrieve"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// requestIDHeader is the response header clients can use to correlate
// a request with the server-side logs it produced, mirroring S3's
// x-amz-request-id.
const requestIDHeader = "X-Request-Id"

// Server is the S3-facing HTTP adapter over ingest.Pipeline and
// retrieve.Pipeline.
type Server struct {
	ingest   *ingest.Pipeline
	retrieve *retrieve.Pipeline
	auth     Authorizer
	region   string
	mux      *http.ServeMux
	logger   zerolog.Logger
}

// NewServer returns a Server. region is reported in error envelopes.
func NewServer(ingestPipeline *ingest.Pipeline, retrievePipeline *retrieve.Pipeline, auth Authorizer, region string) *Server {
	s := &Server{
		ingest:   ingestPipeline,
		retrieve: retrievePipeline,
		auth:     auth,
		region:   region,
		mux:      http.NewServeMux(),
		logger:   log.WithComponent("gateway"),
	}
	s.mux.HandleFunc("/", s.handleObject)
	s.mux.Handle("/metrics", metrics.Handler())
	s.logger.Debug().Str("region", region).Msg("gateway server initialized")
	return s
}

// Handler returns the server's http.Handler for use with http.Server
// or httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func bucketFromHost(host string) string {
	host = strings.ToLower(host)
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return host
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	w.Header().Set(requestIDHeader, requestID)
	reqLog := s.logger.With().Str("request_id", requestID).Logger()

	bucket := bucketFromHost(r.Host)
	key := strings.TrimPrefix(r.URL.Path, "/")

	if bucket == "" {
		writeError(w, s.region, r.URL.Path, apierr.New(apierr.BadRequest, "missing Host header"))
		return
	}

	if _, err := s.auth.Authorize(r); err != nil {
		writeError(w, s.region, r.URL.Path, apierr.Wrap(apierr.AuthorizationMalformed, "authorizing request", err))
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handlePut(w, r, bucket, key, reqLog)
	case http.MethodGet:
		s.handleGet(w, r, bucket, key, reqLog)
	default:
		writeError(w, s.region, r.URL.Path, apierr.New(apierr.NotImplemented, "unsupported method "+r.Method))
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request, bucket, key string, reqLog zerolog.Logger) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.GatewayRequestDuration, "PUT")

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id, err := s.ingest.Put(r.Context(), bucket, key, mimeType, r.Body)
	if err != nil {
		s.recordStatus("PUT", apierr.KindOf(err))
		reqLog.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("PUT failed")
		writeError(w, s.region, r.URL.Path, err)
		return
	}

	s.recordStatus("PUT", "")
	reqLog.Info().Str("bucket", bucket).Str("key", key).Str("uuid", id.String()).Msg("PUT accepted")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(id.String()))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, bucket, key string, reqLog zerolog.Logger) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.GatewayRequestDuration, "GET")

	result, err := s.retrieve.Get(r.Context(), bucket, key)
	if err != nil {
		s.recordStatus("GET", apierr.KindOf(err))
		reqLog.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("GET failed")
		writeError(w, s.region, r.URL.Path, err)
		return
	}

	s.recordStatus("GET", "")
	w.Header().Set("Content-Type", result.MimeType)
	if result.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, result.Body); err != nil {
		reqLog.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("error streaming response body")
	}
}

func (s *Server) recordStatus(method string, kind apierr.Kind) {
	status := "200"
	if kind != "" {
		code, _ := statusAndCode(kind)
		status = strconv.Itoa(code)
	}
	metrics.GatewayRequestsTotal.WithLabelValues(method, status).Inc()
}
