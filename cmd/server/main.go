package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appaudit "github.com/cementiri/backend/internal/application/audit"
	appbilling "github.com/cementiri/backend/internal/application/billing"
	appcontract "github.com/cementiri/backend/internal/application/contract"
	appidentity "github.com/cementiri/backend/internal/application/identity"
	appoperations "github.com/cementiri/backend/internal/application/operations"
	appregistry "github.com/cementiri/backend/internal/application/registry"
	appreport "github.com/cementiri/backend/internal/application/report"
	apptransfer "github.com/cementiri/backend/internal/application/transfer"
	"github.com/cementiri/backend/internal/infrastructure/auth"
	"github.com/cementiri/backend/internal/infrastructure/config"
	"github.com/cementiri/backend/internal/infrastructure/event"
	"github.com/cementiri/backend/internal/infrastructure/logger"
	"github.com/cementiri/backend/internal/infrastructure/persistence"
	"github.com/cementiri/backend/internal/infrastructure/printing"
	"github.com/cementiri/backend/internal/infrastructure/storage"
	"github.com/cementiri/backend/internal/infrastructure/telemetry"
	"github.com/cementiri/backend/internal/interfaces/http/handler"
	"github.com/cementiri/backend/internal/interfaces/http/middleware"
	"github.com/cementiri/backend/internal/interfaces/http/router"

	_ "github.com/cementiri/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Cemetery Administration API
//	@version		1.0
//	@description	Multi-tenant municipal cemetery administration backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	configPath := flag.String("config", os.Getenv("CEM_CONFIG"), "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting cementiri backend",
		zap.String("mode", cfg.Server.Mode),
		zap.Int("port", cfg.Server.Port),
	)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(context.Background(), cfg.Telemetry)
		if err != nil {
			log.Fatal("failed to set up telemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error("error shutting down telemetry", zap.Error(err))
			}
		}()

		metricsShutdown, err := telemetry.SetupMetrics(context.Background(), cfg.Telemetry)
		if err != nil {
			log.Fatal("failed to set up metrics", zap.Error(err))
		}
		defer func() {
			if err := metricsShutdown(context.Background()); err != nil {
				log.Error("error shutting down metrics", zap.Error(err))
			}
		}()

		otelCore, logsShutdown, err := telemetry.SetupLogs(context.Background(), cfg.Telemetry)
		if err != nil {
			log.Fatal("failed to set up log export", zap.Error(err))
		}
		defer func() {
			if err := logsShutdown(context.Background()); err != nil {
				log.Error("error shutting down log export", zap.Error(err))
			}
		}()
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	db, err := persistence.NewDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	repos := persistence.NewRepositories(db)

	bus := event.NewInMemoryBus(log)
	bus.Subscribe(appaudit.NewLogHandler(log))

	jwtService := auth.NewJWTService(cfg.JWT)

	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("error closing redis client", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("redis token blacklist enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		blacklist = auth.NewMemoryTokenBlacklist()
	}

	var docStorage storage.DocumentStorage
	switch cfg.Storage.Backend {
	case "s3":
		docStorage, err = storage.NewS3Storage(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatal("failed to initialize s3 storage", zap.Error(err))
		}
		log.Info("s3 document storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	default:
		docStorage, err = storage.NewLocalStorage(cfg.Storage.StubDir)
		if err != nil {
			log.Fatal("failed to initialize local storage", zap.Error(err))
		}
	}

	renderer, err := printing.NewRenderer(cfg.Printing.Enabled, cfg.Printing.Timeout)
	if err != nil {
		log.Fatal("failed to initialize pdf renderer", zap.Error(err))
	}

	// Application services
	sepulturaService := appregistry.NewSepulturaService(db, repos, log)
	contractService := appcontract.NewContractService(db, repos, bus, docStorage, renderer, log)
	caseService := apptransfer.NewCaseService(db, repos, docStorage, renderer, log)
	billingService := appbilling.NewBillingService(db, repos, bus, docStorage, renderer, log)
	operationsService := appoperations.NewOperationsService(db, repos, docStorage, renderer, log)
	authService := appidentity.NewAuthService(repos, jwtService, blacklist, log)
	reportService := appreport.NewReportService(repos, log)

	// HTTP handlers
	sepulturaHandler := handler.NewSepulturaHandler(sepulturaService)
	contractHandler := handler.NewContractHandler(contractService)
	caseHandler := handler.NewTransferCaseHandler(caseService)
	billingHandler := handler.NewBillingHandler(billingService)
	operationsHandler := handler.NewOperationsHandler(operationsService)
	authHandler := handler.NewAuthHandler(authService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))
	engine.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.HTTPMetrics(cfg.Telemetry.ServiceName))

	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.New(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(middleware.JWTConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	// Auth and tenant administration
	authRoutes := router.NewGroup("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.POST("/users", middleware.RequireAdminRole(), authHandler.RegisterUser)

	orgRoutes := router.NewGroup("/organizations")
	orgRoutes.GET("", authHandler.ListOrganizations)
	orgRoutes.POST("", middleware.RequireAdminRole(), authHandler.CreateOrganization)

	// Grave registry
	registryRoutes := router.NewGroup("")
	registryRoutes.POST("/cemeteries", middleware.RequireWriteRole(), sepulturaHandler.CreateCemetery)
	registryRoutes.GET("/cemeteries", sepulturaHandler.ListCemeteries)
	registryRoutes.POST("/sepulturas", middleware.RequireWriteRole(), sepulturaHandler.CreateSepultura)
	registryRoutes.GET("/sepulturas", sepulturaHandler.SearchSepulturas)
	registryRoutes.POST("/sepulturas/mass-create", middleware.RequireWriteRole(), sepulturaHandler.MassCreate)
	registryRoutes.GET("/sepulturas/:id", sepulturaHandler.GetSepultura)
	registryRoutes.PUT("/sepulturas/:id/estado", middleware.RequireWriteRole(), sepulturaHandler.ChangeEstado)
	registryRoutes.GET("/sepulturas/:id/movimientos", sepulturaHandler.Movimientos)
	registryRoutes.GET("/sepulturas/:id/contract", contractHandler.GetActiveBySepultura)
	registryRoutes.GET("/persons", sepulturaHandler.SearchPersons)

	// Funeral-right contracts and billing by contract
	contractRoutes := router.NewGroup("/contracts")
	contractRoutes.POST("", middleware.RequireWriteRole(), contractHandler.CreateContract)
	contractRoutes.GET("/:id", contractHandler.GetContract)
	contractRoutes.PUT("/:id/beneficiary", middleware.RequireWriteRole(), contractHandler.NominateBeneficiary)
	contractRoutes.DELETE("/:id/beneficiary", middleware.RequireWriteRole(), contractHandler.RemoveBeneficiary)
	contractRoutes.PUT("/:id/pensioner", middleware.RequireWriteRole(), contractHandler.SetPensioner)
	contractRoutes.POST("/:id/title", middleware.RequireWriteRole(), contractHandler.EmitTitle)
	contractRoutes.POST("/:id/extinguish", middleware.RequireWriteRole(), contractHandler.Extinguish)
	contractRoutes.GET("/:id/outstanding", billingHandler.Outstanding)
	contractRoutes.GET("/:id/tickets", billingHandler.TicketsByContract)
	contractRoutes.POST("/:id/collect", middleware.RequireWriteRole(), billingHandler.Collect)
	contractRoutes.GET("/:id/invoices", billingHandler.InvoicesByContract)

	// Ownership-transfer cases
	caseRoutes := router.NewGroup("/transfer-cases")
	caseRoutes.POST("", middleware.RequireWriteRole(), caseHandler.CreateCase)
	caseRoutes.GET("", caseHandler.ListCases)
	caseRoutes.GET("/stalled", caseHandler.StalledCases)
	caseRoutes.GET("/:id", caseHandler.GetCase)
	caseRoutes.POST("/:id/parties", middleware.RequireWriteRole(), caseHandler.AddParty)
	caseRoutes.POST("/:id/publications", middleware.RequireWriteRole(), caseHandler.AddPublication)
	caseRoutes.POST("/:id/documents", middleware.RequireWriteRole(), caseHandler.UploadDocument)
	caseRoutes.GET("/:id/documents/:doc_type", caseHandler.DownloadDocument)
	caseRoutes.GET("/:id/resolution", caseHandler.DownloadResolution)
	caseRoutes.PUT("/:id/documents/:doc_type/review", middleware.RequireWriteRole(), caseHandler.ReviewDocument)
	caseRoutes.PUT("/:id/status", middleware.RequireWriteRole(), caseHandler.ChangeStatus)
	caseRoutes.POST("/:id/approve", middleware.RequireWriteRole(), caseHandler.Approve)
	caseRoutes.POST("/:id/reject", middleware.RequireWriteRole(), caseHandler.Reject)
	caseRoutes.POST("/:id/close", middleware.RequireWriteRole(), caseHandler.CloseCase)

	// Yearly billing
	billingRoutes := router.NewGroup("/billing")
	billingRoutes.POST("/tickets/generate", middleware.RequireWriteRole(), billingHandler.GenerateTickets)
	billingRoutes.POST("/tickets/:id/void", middleware.RequireWriteRole(), billingHandler.VoidTicket)
	billingRoutes.GET("/invoices/:id/payments", billingHandler.PaymentsByInvoice)

	// Operational dossiers, work orders, stock and inscriptions
	operationsRoutes := router.NewGroup("")
	operationsRoutes.POST("/expedientes", middleware.RequireWriteRole(), operationsHandler.CreateExpediente)
	operationsRoutes.GET("/expedientes", operationsHandler.ListExpedientes)
	operationsRoutes.GET("/expedientes/:id", operationsHandler.GetExpediente)
	operationsRoutes.PUT("/expedientes/:id/estado", middleware.RequireWriteRole(), operationsHandler.ChangeExpedienteEstado)
	operationsRoutes.POST("/expedientes/:id/ordenes", middleware.RequireWriteRole(), operationsHandler.CreateOrdenTrabajo)
	operationsRoutes.GET("/expedientes/:id/ordenes", operationsHandler.OrdenesByExpediente)
	operationsRoutes.POST("/ordenes/:id/complete", middleware.RequireWriteRole(), operationsHandler.CompleteOrdenTrabajo)
	operationsRoutes.GET("/ordenes/:id/print", operationsHandler.PrintOrdenTrabajo)
	operationsRoutes.POST("/stock/entries", middleware.RequireWriteRole(), operationsHandler.StockEntry)
	operationsRoutes.POST("/stock/exits", middleware.RequireWriteRole(), operationsHandler.StockExit)
	operationsRoutes.GET("/stock", operationsHandler.ListStock)
	operationsRoutes.GET("/stock/:id/movimientos", operationsHandler.StockMovimientos)
	operationsRoutes.POST("/inscripciones", middleware.RequireWriteRole(), operationsHandler.CreateInscripcion)
	operationsRoutes.GET("/inscripciones", operationsHandler.ListInscripciones)
	operationsRoutes.PUT("/inscripciones/:id/estado", middleware.RequireWriteRole(), operationsHandler.AdvanceInscripcion)

	// Reports and exports
	reportRoutes := router.NewGroup("/reports")
	reportRoutes.GET("/panel", reportHandler.Panel)
	reportRoutes.GET("/graves.csv", reportHandler.ExportGraves)
	reportRoutes.GET("/cases.csv", reportHandler.ExportCases)
	reportRoutes.GET("/billing/:year", reportHandler.YearlyBilling)

	systemRoutes := router.NewGroup("/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(authRoutes, orgRoutes, registryRoutes, contractRoutes, caseRoutes,
		billingRoutes, operationsRoutes, reportRoutes, systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
