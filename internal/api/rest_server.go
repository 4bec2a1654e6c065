package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tsugumi-sys/minecraft-addons/internal/app"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/middleware"
	"github.com/tsugumi-sys/minecraft-addons/internal/storage"
)

// Host - то, что REST API знает о хосте аддонов
type Host interface {
	Submit(ctx context.Context, cmd app.Command) error
	Status() app.Status
	Activity(ctx context.Context, actorID string) (storage.ActivityRecord, bool, error)
	Messages(actorID string) ([]string, error)
}

// RestServer - ops/API сервер: здоровье, метрики, ввод событий, статистика
type RestServer struct {
	router  *gin.Engine
	srv     *http.Server
	host    Host
	metrics *ServerMetrics
	log     *logging.Logger
	timeout time.Duration
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port        int
	Host        Host
	ServiceName string               // имя для otelgin и метка service HTTP-метрик
	Registry    *prometheus.Registry // nil - дефолтный регистр
	Timeout     time.Duration        // ожидание применения команды
	Logger      *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port <= 0 {
		config.Port = 8088
	}
	if config.ServiceName == "" {
		config.ServiceName = "ops_api"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logging.GetComponentLogger("api")
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.ServiceName))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	var (
		reg      prometheus.Registerer
		gatherer prometheus.Gatherer
	)
	if config.Registry != nil {
		reg, gatherer = config.Registry, config.Registry
	}
	promMw := middleware.NewPrometheusMiddleware(config.ServiceName, reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	rs := &RestServer{
		router:  router,
		host:    config.Host,
		metrics: NewServerMetrics(),
		log:     config.Logger,
		timeout: config.Timeout,
	}
	rs.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/stats", rs.handleStats)
		api.POST("/events", rs.handleEvent)
		api.GET("/actors/:id/activity", rs.handleActivity)
		api.GET("/actors/:id/messages", rs.handleMessages)
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler { return rs.router }

func (rs *RestServer) handleHealth(c *gin.Context) {
	status := rs.host.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().Unix(),
		"tick":    status.Tick,
		"process": rs.metrics.Snapshot(),
	})
}

func (rs *RestServer) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data: gin.H{
			"host":        rs.host.Status(),
			"server":      rs.metrics.Snapshot(),
			"server_time": time.Now().Unix(),
		},
	})
}

// handleEvent ставит команду в очередь хоста и ждёт её применения на ближайшем тике
func (rs *RestServer) handleEvent(c *gin.Context) {
	var cmd app.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.timeout)
	defer cancel()

	if err := rs.host.Submit(ctx, cmd); err != nil {
		c.JSON(statusFor(err), GenericResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, GenericResponse{
		Success: true,
		Message: "applied",
		Data:    gin.H{"type": cmd.Type, "tick": rs.host.Status().Tick},
	})
}

func (rs *RestServer) handleActivity(c *gin.Context) {
	id := c.Param("id")
	rec, found, err := rs.host.Activity(c.Request.Context(), id)
	if err != nil {
		rs.log.Warn("Activity lookup for %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "no activity for " + id})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok", Data: rec})
}

func (rs *RestServer) handleMessages(c *gin.Context) {
	msgs, err := rs.host.Messages(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), GenericResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok", Data: msgs})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUnknownActor):
		return http.StatusNotFound
	case errors.Is(err, app.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}

// Start запускает HTTP-сервер в отдельной горутине
func (rs *RestServer) Start() {
	go func() {
		rs.log.Info("🌐 REST API listening on %s", rs.srv.Addr)
		if err := rs.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.log.Error("❌ REST API stopped: %v", err)
		}
	}()
}

// Stop корректно завершает HTTP-сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.srv.Shutdown(ctx)
}
