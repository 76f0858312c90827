package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/stockmaster-api/internal/application/auth"
	appledger "github.com/tu-usuario/stockmaster-api/internal/application/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/application/usecase"
	"github.com/tu-usuario/stockmaster-api/internal/infrastructure/memory"
	"github.com/tu-usuario/stockmaster-api/internal/infrastructure/notifier"
	"github.com/tu-usuario/stockmaster-api/internal/infrastructure/postgres"
	infraredis "github.com/tu-usuario/stockmaster-api/internal/infrastructure/redis"
	httpRouter "github.com/tu-usuario/stockmaster-api/internal/interfaces/http"
	"github.com/tu-usuario/stockmaster-api/pkg/config"
	"github.com/tu-usuario/stockmaster-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	operationRepo := postgres.NewOperationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	ledgerStore := postgres.NewLedgerStore(pool)

	executor := appledger.NewExecutor(
		ledgerStore, productRepo, warehouseRepo, operationRepo,
		cfg.Ledger.MaxRetries, log,
	)
	workflow := appledger.NewWorkflow(operationRepo)

	productUC := usecase.NewProductUseCase(productRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)

	// Sesiones OTP: Redis si hay dirección configurada, memoria en local.
	var otpStore auth.OTPStore
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		otpStore = infraredis.NewOTPStore(client)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sesiones OTP en memoria")
		otpStore = memory.NewOTPStore()
	}

	authUC := auth.NewAuthUseCase(
		userRepo,
		otpStore,
		notifier.NewLogOTPSender(log),
		time.Duration(cfg.OTP.TTLMinutes)*time.Minute,
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		WarehouseUC: warehouseUC,
		Executor:    executor,
		Workflow:    workflow,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
