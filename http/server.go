// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bankpredict/inference"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
	ModelType      string
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   64 << 10,
	}
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, predictor *inference.Predictor, logger *zap.Logger) (*Server, error) {
	router, err := NewRouter(config, predictor, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: logger,
	}, nil
}

// NewRouter 注册所有路由和中间件
func NewRouter(config ServerConfig, predictor *inference.Predictor, logger *zap.Logger) (http.Handler, error) {
	h, err := newHandlers(config, predictor, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggerMiddleware(logger))
	r.Use(SecurityHeadersMiddleware)
	r.Use(CORSMiddleware(config.AllowedOrigins))

	r.Get("/api/health", h.handleHealth)
	r.Get("/api/schema", h.handleSchema)
	r.Get("/api/ws/predict", h.handlePredictWS)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if config.Timeout > 0 {
			r.Use(middleware.Timeout(config.Timeout))
		}
		r.Use(RequestSizeMiddleware(config.MaxBodyBytes))
		r.Get("/", h.handleIndex)
		r.Post("/predict", h.handlePredictForm)
		r.Post("/api/predict", h.handlePredictJSON)
	})

	return r, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
