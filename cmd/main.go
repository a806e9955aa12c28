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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addUnavailableDateHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/add_unavailable_date"
	admitBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/admit_booking"
	cancelBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/cancel_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/get_booking"
	getScheduleHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/get_schedule"
	listBookingsHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/list_bookings"
	listUnavailableDatesHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/list_unavailable_dates"
	removeUnavailableDateHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/remove_unavailable_date"
	updateBookingStatusHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/update_booking_status"
	updateScheduleHandler "github.com/m04kA/SMC-ClinicBooking/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-ClinicBooking/internal/api/middleware"
	"github.com/m04kA/SMC-ClinicBooking/internal/config"
	availabilityCache "github.com/m04kA/SMC-ClinicBooking/internal/infra/cache/availability"
	bookingRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/schedule"
	unavailableDateRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/unavailable_date"
	bookingsService "github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-ClinicBooking/internal/service/schedule"
	admitBookingUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/admit_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ClinicBooking/migrations"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/metrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
)

const configPath = "config.toml"

func main() {
	// Загружаем конфигурацию
	path := configPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
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

	log.Info("Starting SMC-ClinicBooking...")
	log.Info("Configuration loaded from %s", path)

	// Config.Validate уже проверил политику
	policy, err := cfg.Booking.Policy()
	if err != nil {
		log.Fatal("Invalid booking policy: %v", err)
	}
	log.Info("Booking policy: slot=%dm, capacity=%d, notice=%dm, advance=%dd, timezone=%s",
		policy.SlotDurationMinutes, policy.SlotCapacity, policy.MinBookingNoticeMinutes,
		policy.AdvanceBookingDays, policy.Location)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
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

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// При выключенных метриках обёртка работает как прозрачный прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	unavailableDateRepository := unavailableDateRepo.NewRepository(wrappedDB)

	// Кэш расписания и закрытых дат
	cache := newAvailabilityCache(cfg.Redis, log)

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		unavailableDateRepository,
		bookingRepository,
		cache,
		txMgr,
		policy.Location,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		txMgr,
		policy.Location,
		log,
	)

	// Единственная строка расписания создаётся при старте
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := scheduleSvc.EnsureScheduleExists(bootstrapCtx); err != nil {
		bootstrapCancel()
		log.Fatal("Failed to bootstrap schedule: %v", err)
	}
	bootstrapCancel()

	// Инициализируем use cases
	admitBookingUseCase := admitBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		unavailableDateRepository,
		txMgr,
		policy,
		admitBookingUC.Timeouts{
			Admission: time.Duration(cfg.Booking.AdmissionTimeout) * time.Second,
			Lock:      time.Duration(cfg.Booking.LockTimeoutMs) * time.Millisecond,
		},
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleSvc,
		policy,
		log,
	)

	// Инициализируем handlers
	admitBooking := admitBookingHandler.NewHandler(admitBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)
	listUnavailableDates := listUnavailableDatesHandler.NewHandler(scheduleSvc, log)
	addUnavailableDate := addUnavailableDateHandler.NewHandler(scheduleSvc, log)
	removeUnavailableDate := removeUnavailableDateHandler.NewHandler(scheduleSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты на дату
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание и закрытые даты
	api.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/unavailable-dates", listUnavailableDates.Handle).Methods(http.MethodGet)

	// Создание бронирования (с ограничением частоты по IP)
	var admitHandler http.Handler = http.HandlerFunc(admitBooking.Handle)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.RunCleanup(stopCh)
		admitHandler = limiter.Middleware(admitHandler)
		log.Info("Rate limit for POST /bookings: rps=%.2f, burst=%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	api.Handle("/bookings", admitHandler).Methods(http.MethodPost)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-ID header)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth)

	// --- Расписание ---
	admin.HandleFunc("/schedule", updateSchedule.Handle).Methods(http.MethodPut)

	// --- Закрытые даты ---
	admin.HandleFunc("/unavailable-dates", addUnavailableDate.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/unavailable-dates/{date}", removeUnavailableDate.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	admin.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId:[0-9]+}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

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

	// Останавливаем фоновые горутины (статистика пула, очистка лимитера)
	close(stopCh)

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

// newAvailabilityCache подключает redis, при недоступности работает без кэша
func newAvailabilityCache(cfg config.RedisConfig, log *logger.Logger) scheduleService.AvailabilityCache {
	if !cfg.Enabled {
		log.Info("Redis cache disabled")
		return availabilityCache.NopCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable at %s, continuing without cache: %v", cfg.Addr, err)
		_ = client.Close()
		return availabilityCache.NopCache{}
	}

	log.Info("Redis cache connected (addr=%s, ttl=%ds)", cfg.Addr, cfg.TTL)
	return availabilityCache.NewCache(client, time.Duration(cfg.TTL)*time.Second)
}
