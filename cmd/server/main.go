package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tsugumi-sys/minecraft-addons/internal/api"
	"github.com/tsugumi-sys/minecraft-addons/internal/app"
	"github.com/tsugumi-sys/minecraft-addons/internal/config"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/observability"
	"github.com/tsugumi-sys/minecraft-addons/internal/storage"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (пусто - $ADDONS_CONFIG или значения по умолчанию)")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск minecraft-addons host...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	lm := logging.GetLoggerManager()
	lm.EnableFiles(true)
	lm.SetConsoleLevel(logging.ParseLevel(cfg.LogLevel))
	defer func() {
		if err := lm.CloseAll(); err != nil {
			logging.Error("Ошибка закрытия логгеров: %v", err)
		}
	}()

	logging.Info("📡 Конфигурация: lang=%s, tps=%d, grid=%s, store=%s",
		cfg.Language, cfg.Server.TickRate, cfg.Grid.Backend, cfg.Productivity.Store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		logging.Warn("⚠️ Телеметрия отключена: %v", err)
		shutdownTelemetry = observability.Noop
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// === EVENT BUS ===
	bus, err := newBus(cfg.EventBus)
	if err != nil {
		log.Fatalf("❌ Ошибка подключения к шине событий: %v", err)
	}
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Не удалось подписать логгер событий: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), reg)

	// === GRID / STORAGE ===
	grid, gridCloser, err := newGrid(cfg.Grid)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации сетки: %v", err)
	}
	activity, activityCloser, err := newActivityRepo(ctx, cfg.Productivity)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации хранилища активности: %v", err)
	}

	host, err := app.New(app.Options{
		Config:     cfg,
		Grid:       grid,
		Activity:   activity,
		Publisher:  bus,
		Registerer: reg,
		Logger:     logging.GetServerLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания хоста: %v", err)
	}

	// === REST API ===
	apiPort := cfg.Server.GetAPIPort()
	restServer := api.NewRestServer(api.Config{
		Port:        apiPort,
		Host:        host,
		ServiceName: cfg.Telemetry.ServiceName,
		Registry:    reg,
	})
	restServer.Start()

	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("❌ Цикл тиков завершился с ошибкой: %v", err)
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost:%d", apiPort)
	logging.Info("   📈 Metrics: http://localhost:%d/metrics", cfg.Server.GetMetricsPort())
	logging.Info("   ❤️  Health check: http://localhost:%d/health", apiPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := restServer.Stop(stopCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	cancel()
	<-hostDone

	if err := exporter.Stop(stopCtx); err != nil {
		logging.Error("Ошибка остановки /metrics: %v", err)
	}
	if err := bus.Close(); err != nil {
		logging.Error("Ошибка закрытия шины событий: %v", err)
	}
	closeQuietly("grid", gridCloser)
	closeQuietly("activity store", activityCloser)
	if err := shutdownTelemetry(stopCtx); err != nil {
		logging.Error("Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

func newBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("🚌 Шина событий: in-memory")
		return eventbus.NewMemoryBus(1024), nil
	}
	retention := time.Duration(cfg.Retention) * time.Hour
	jb, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, retention)
	if err != nil {
		return nil, err
	}
	logging.Info("🚌 Шина событий: JetStream %s (stream=%s)", cfg.URL, cfg.Stream)
	return jb, nil
}

func newGrid(cfg config.GridConfig) (app.Grid, io.Closer, error) {
	switch cfg.Backend {
	case "memory":
		return world.NewSparseGrid(), nil, nil
	case "badger":
		g, err := storage.NewBadgerGrid(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	default:
		return nil, nil, fmt.Errorf("unknown grid backend %q", cfg.Backend)
	}
}

func newActivityRepo(ctx context.Context, cfg config.ProductivityConfig) (storage.ActivityRepo, io.Closer, error) {
	switch cfg.Store {
	case "memory":
		return storage.NewMemoryActivityRepo(), nil, nil
	case "redis":
		rc := storage.DefaultRedisConfig()
		if cfg.RedisURL != "" {
			rc.URL = cfg.RedisURL
		}
		if cfg.TTLHours > 0 {
			rc.TTL = time.Duration(cfg.TTLHours) * time.Hour
		}
		repo, err := storage.NewRedisActivityRepo(ctx, rc)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return nil, nil, fmt.Errorf("unknown activity store %q", cfg.Store)
	}
}

func closeQuietly(name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Error("Ошибка закрытия %s: %v", name, err)
	}
}
