package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	getBookingHandler "github.com/calhub/CalHub-ReassignService/internal/api/handlers/get_booking"
	reassignBookingHandler "github.com/calhub/CalHub-ReassignService/internal/api/handlers/reassign_booking"
	"github.com/calhub/CalHub-ReassignService/internal/api/middleware"
	"github.com/calhub/CalHub-ReassignService/internal/config"
	bookingRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/booking"
	eventTypeRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/eventtype"
	userRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/user"
	workflowRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/workflow"
	calendarServiceClient "github.com/calhub/CalHub-ReassignService/internal/integrations/calendarservice"
	notifyServiceClient "github.com/calhub/CalHub-ReassignService/internal/integrations/notifyservice"
	bookingsService "github.com/calhub/CalHub-ReassignService/internal/service/bookings"
	"github.com/calhub/CalHub-ReassignService/internal/service/translations"
	reassignBookingUC "github.com/calhub/CalHub-ReassignService/internal/usecase/reassign_booking"
	remindersWorker "github.com/calhub/CalHub-ReassignService/internal/workers/reminders"
	"github.com/calhub/CalHub-ReassignService/pkg/dbmetrics"
	"github.com/calhub/CalHub-ReassignService/pkg/logger"
	"github.com/calhub/CalHub-ReassignService/pkg/metrics"
	"github.com/calhub/CalHub-ReassignService/pkg/simpletxmanager"
	"github.com/calhub/CalHub-ReassignService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting CalHub-ReassignService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	calendarClient := calendarServiceClient.NewClient(
		cfg.CalendarService.URL,
		time.Duration(cfg.CalendarService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CalendarService=%s timeout=%ds, NotifyService=%s timeout=%ds)",
		cfg.CalendarService.URL, cfg.CalendarService.Timeout, cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository   *bookingRepo.Repository
		userRepository      *userRepo.Repository
		eventTypeRepository *eventTypeRepo.Repository
		workflowRepository  *workflowRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		userRepository = userRepo.NewRepository(wrappedDB)
		eventTypeRepository = eventTypeRepo.NewRepository(wrappedDB)
		workflowRepository = workflowRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		userRepository = userRepo.NewRepository(db)
		eventTypeRepository = eventTypeRepo.NewRepository(db)
		workflowRepository = workflowRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	translator := translations.NewService()
	bookingSvc := bookingsService.NewService(bookingRepository, log)

	// Инициализируем use cases
	reassignUseCase := reassignBookingUC.NewUseCase(
		bookingRepository,
		userRepository,
		eventTypeRepository,
		workflowRepository,
		calendarClient,
		notifyClient,
		translator,
		txMgr,
		cfg.App.BookerBaseURL,
		log,
	)

	// Инициализируем handlers
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)

	var reassignMetrics reassignBookingHandler.Metrics
	if cfg.Metrics.Enabled {
		reassignMetrics = metricsCollector
	}
	reassignBooking := reassignBookingHandler.NewHandler(reassignUseCase, reassignMetrics, log)

	// Запускаем воркер отправки напоминаний (если включен)
	var worker *remindersWorker.Worker
	if cfg.Reminders.Enabled {
		worker = remindersWorker.NewWorker(
			remindersWorker.Config{
				CronSpec:  cfg.Reminders.CronSpec,
				BatchSize: cfg.Reminders.BatchSize,
			},
			workflowRepository,
			bookingRepository,
			userRepository,
			notifyClient,
			log,
		)
		if err := worker.Start(); err != nil {
			log.Fatal("Failed to start reminder worker: %v", err)
		}
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Переназначение организатора бронирования
	protected.HandleFunc("/bookings/{bookingId}/reassign", reassignBooking.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем воркер напоминаний
	if worker != nil {
		worker.Stop()
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
