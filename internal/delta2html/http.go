// Пакет delta2html предоставляет HTTP сервис преобразования документов Quill Delta в HTML и другие форматы.
//
// Основные возможности:
//   - Преобразование одного документа или пакета документов в HTML, Markdown, текст, TipTap JSON и PDF.
//   - Отладочный вывод дерева групп документа.
//   - Живой предпросмотр через websocket.
//   - Пользовательская отрисовка embed Lua-скриптом.
//   - MCP инструмент для LLM-клиентов.
//   - Метрики Prometheus на отдельном порту.
package delta2html

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aisa-it/delta2html/internal/delta2html/apierrors"
	"github.com/aisa-it/delta2html/internal/delta2html/config"
	"github.com/aisa-it/delta2html/internal/delta2html/mcp"
	"github.com/aisa-it/delta2html/internal/delta2html/rules"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type Services struct {
	cfg        *config.Config
	version    string
	scripts    atomic.Pointer[rules.Renderer]
	scriptMod  time.Time
	scriptMu   sync.Mutex
	metrics    *Metrics
	validator  *RequestValidator
	registerer prometheus.Registerer
}

// NewServices подготавливает зависимости обработчиков. Скрипт отрисовки
// компилируется один раз, ошибка синтаксиса не дает запустить сервис.
func NewServices(cfg *config.Config, version string, reg prometheus.Registerer) (*Services, error) {
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	s := &Services{
		cfg:        cfg,
		version:    version,
		metrics:    metrics,
		validator:  NewRequestValidator(),
		registerer: reg,
	}

	if cfg.CustomRenderScriptPath != "" {
		info, err := os.Stat(cfg.CustomRenderScriptPath)
		if err != nil {
			return nil, err
		}
		scripts, err := rules.LoadRenderer(cfg.CustomRenderScriptPath, cfg.LuaTimeout())
		if err != nil {
			return nil, err
		}
		s.scripts.Store(scripts)
		s.scriptMod = info.ModTime()
		slog.Info("Custom render script loaded", "path", cfg.CustomRenderScriptPath, "timeout", cfg.LuaTimeout())
	}
	return s, nil
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "delta2html")
		return next(c)
	}
}

// NewEcho собирает сервер со всеми middleware и маршрутами.
func (s *Services) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: s.cfg.BodyLimit,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/ws/preview/" ||
				strings.HasPrefix(c.Request().URL.Path, "/mcp")
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "delta2html",
		Registerer: s.registerer,
	}))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/mcp")
		},
	}))

	e.Validator = s.validator

	apiGroup := e.Group("/api/")
	s.AddConvertServices(apiGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version":       s.version,
			"formats":       slices.Concat(Formats, []string{FormatPDF}),
			"custom_script": s.scripts.Load() != nil,
			"mcp":           s.cfg.MCPEnable,
			"max_batch":     s.cfg.MaxBatch,
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if s.cfg.MCPEnable {
		e.Any("/mcp", mcp.NewMCPServer(s.version, s), s.MCPTokenMiddleware)
	}

	return e
}

// MCPTokenMiddleware проверяет Bearer токен, если он задан в конфигурации.
func (s *Services) MCPTokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.cfg.MCPToken == "" {
			return next(c)
		}
		token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.MCPToken)) != 1 {
			return EErrorDefined(c, apierrors.ErrUnauthorized)
		}
		return next(c)
	}
}

func Server(cfg *config.Config, version string) {
	s, err := NewServices(cfg, version, prometheus.DefaultRegisterer)
	if err != nil {
		slog.Error("Init services", "err", err)
		os.Exit(1)
	}

	e := s.NewEcho()

	cm, err := s.NewCronManager()
	if err != nil {
		slog.Error("Init cron jobs", "err", err)
		os.Exit(1)
	}
	if cm != nil {
		cm.Start()
		defer cm.Stop()
	}

	// Prometheus metrics
	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "delta2html",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
			os.Exit(1)
		}

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server fail", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown", "err", err)
	}
}
