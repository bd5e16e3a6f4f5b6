// Package service 提供 HTTP 接口：
//
//	GET  /api/health      服务状态与模型是否加载
//	POST /api/recommend   按偏好返回推荐
//	GET  /api/properties  当前房源目录
//	GET  /api/delisted    下架房源列表（配置了 Delisted 时）
//	PUT  /api/delisted    替换下架房源列表
//	GET  /metrics         Prometheus 指标
package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/feed"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/rank"
)

// maxBodyBytes 限制请求体大小。
const maxBodyBytes = 1 << 20

// Server 持有一次启动内共享的 Ranker 与 Feed，处理函数之间不共享可变状态。
type Server struct {
	Ranker *rank.Ranker
	Feed   feed.Feed
	// Delisted 为空时不挂载 /api/delisted
	Delisted *Delisted
	Logger   *zerolog.Logger
}

func NewServer(r *rank.Ranker, f feed.Feed) *Server {
	return &Server{Ranker: r, Feed: f}
}

// Routes 返回挂好中间件与路由的 chi.Router。
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog(s.logger()))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.Health)
		r.Post("/recommend", s.Recommend)
		r.Get("/properties", s.Properties)
		if s.Delisted != nil {
			r.Get("/delisted", s.ListDelisted)
			r.Put("/delisted", s.ReplaceDelisted)
		}
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type recommendResponse struct {
	Success bool `json:"success"`
	*core.Result
}

type propertiesResponse struct {
	Success    bool            `json:"success"`
	Properties []core.Property `json:"properties"`
	Count      int             `json:"count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		ModelLoaded: s.Ranker.Predictor.ModelLoaded(),
	})
}

func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeError(w, r, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "No data provided"))
			return
		}
		s.writeError(w, r, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "malformed request body", err))
		return
	}
	prefs, err := req.Preferences.Resolve()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	props, err := s.Feed.Properties(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rctx := core.NewRecommendContext(prefs)
	rctx.RequestID = chimiddleware.GetReqID(r.Context())
	result, err := s.Ranker.RecommendWithContext(r.Context(), rctx, props)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendResponse{Success: true, Result: result})
}

func (s *Server) Properties(w http.ResponseWriter, r *http.Request) {
	props, err := s.Feed.Properties(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, propertiesResponse{Success: true, Properties: props, Count: len(props)})
}

// statusOf 把 DomainError 映射为 HTTP 状态码。
func statusOf(err error) int {
	switch {
	case core.IsInvalidInput(err):
		return http.StatusBadRequest
	case core.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case core.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}
	if de := core.GetDomainError(err); de != nil {
		resp.Code = de.Code
		if status == http.StatusBadRequest {
			resp.Error = de.Message
		}
	}
	ev := s.logger().Warn()
	if status >= http.StatusInternalServerError {
		ev = s.logger().Error()
	}
	ev.Err(err).Str("request_id", chimiddleware.GetReqID(r.Context())).Int("status", status).Msg("request failed")
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	lg := logging.Component("service")
	return &lg
}
