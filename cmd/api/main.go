package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Importaciones-api/internal/application/analytics"
	"github.com/jhoicas/Importaciones-api/internal/application/auth"
	"github.com/jhoicas/Importaciones-api/internal/application/document"
	"github.com/jhoicas/Importaciones-api/internal/application/inventory"
	"github.com/jhoicas/Importaciones-api/internal/application/usecase"
	"github.com/jhoicas/Importaciones-api/internal/domain/policy"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/export"
	infrapdf "github.com/jhoicas/Importaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/Importaciones-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Importaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Importaciones-api/pkg/config"
	"github.com/jhoicas/Importaciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	historyRepo := postgres.NewDocumentHistoryRepository(pool)
	fileRepo := postgres.NewDocumentFileRepository(pool)
	balanceRepo := postgres.NewStockBalanceRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Redis es opcional: sin él no hay revocación de tokens ni lock de conciliación.
	var (
		authDenylist  auth.TokenDenylist
		httpDenylist  httpRouter.RevocationChecker
		reconcileLock scheduler.Locker
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		denylist := redisstore.NewTokenDenylist(rdb)
		authDenylist, httpDenylist = denylist, denylist
		reconcileLock = redisstore.NewLocker(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sign-out sin revocación y conciliación sin lock distribuido")
	}

	var blobs document.BlobStore
	switch cfg.Storage.Driver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsJSON)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar Google Cloud Storage")
		}
		defer gcs.Close()
		blobs = gcs
	default:
		local, err := storage.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar almacenamiento local")
		}
		blobs = local
	}

	pol, err := policy.New()
	if err != nil {
		log.Fatal().Err(err).Msg("cargar política de autorización")
	}

	authUC := auth.NewAuthUseCase(userRepo, authDenylist, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	userUC := usecase.NewUserUseCase(userRepo)
	workflowUC := document.NewWorkflowUseCase(txRunner, docRepo, historyRepo, userRepo, blobs, pol, cfg.Kafka.Topic, log)
	fileUC := document.NewFileUseCase(txRunner, docRepo, fileRepo, blobs, pol, cfg.Storage.MaxUploadBytes, log)

	xlsx := export.NewExcelWriter()
	exportUC := document.NewExportUseCase(
		docRepo, historyRepo, fileRepo, userRepo, pol,
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name), export.NewXMLEncoder(), xlsx,
	)

	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	recordUC := inventory.NewRecordMovementUseCase(txRunner, productRepo, warehouseRepo, docRepo, pol, log)
	queryUC := inventory.NewQueryUseCase(movementRepo, balanceRepo, productRepo, xlsx)
	reconcileUC := inventory.NewReconcileUseCase(txRunner, balanceRepo, movementRepo, log)
	dashboardUC := analytics.NewDashboardUseCase(docRepo, historyRepo, productRepo, balanceRepo)

	var reconcileJob *scheduler.ReconcileJob
	if cfg.Inventory.ReconcileCron != "" {
		reconcileJob, err = scheduler.NewReconcileJob(cfg.Inventory.ReconcileCron, reconcileUC, reconcileLock, cfg.Inventory.ReconcileRepair, log)
		if err != nil {
			log.Fatal().Err(err).Msg("programar conciliación de inventario")
		}
		reconcileJob.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Storage.MaxUploadBytes) + 1<<20, // adjunto + campos del formulario
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.CORSOrigins}))
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Importaciones API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		WorkflowUC:  workflowUC,
		ExportUC:    exportUC,
		FileUC:      fileUC,
		CategoryUC:  categoryUC,
		ProductUC:   productUC,
		WarehouseUC: warehouseUC,
		RecordUC:    recordUC,
		QueryUC:     queryUC,
		ReconcileUC: reconcileUC,
		DashboardUC: dashboardUC,
		Policy:      pol,
		Denylist:    httpDenylist,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,

		SignInRatePerMinute: cfg.Auth.SignInRatePerMinute,
		SignInBurst:         cfg.Auth.SignInBurst,
		LowStockLimit:       cfg.Inventory.LowStockLimit,
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

	if reconcileJob != nil {
		reconcileJob.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
