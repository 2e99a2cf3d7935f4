package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/hub-portal/internal/application/audit"
	"github.com/jhoicas/hub-portal/internal/application/auth"
	"github.com/jhoicas/hub-portal/internal/application/dock"
	"github.com/jhoicas/hub-portal/internal/application/draft"
	"github.com/jhoicas/hub-portal/internal/application/prenote"
	appvs "github.com/jhoicas/hub-portal/internal/application/viewstate"
	vs "github.com/jhoicas/hub-portal/internal/domain/viewstate"
	"github.com/jhoicas/hub-portal/internal/infrastructure/cache"
	"github.com/jhoicas/hub-portal/internal/infrastructure/erp"
	"github.com/jhoicas/hub-portal/internal/infrastructure/nfe"
	infrapdf "github.com/jhoicas/hub-portal/internal/infrastructure/pdf"
	"github.com/jhoicas/hub-portal/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/hub-portal/internal/interfaces/http"
	"github.com/jhoicas/hub-portal/pkg/config"
	"github.com/jhoicas/hub-portal/pkg/logger"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	rdb, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()

	// Estado de tablas: Redis con sobre versionado
	tableOpts := func(string) vs.Options {
		return vs.Options{
			DefaultPageSize: cfg.ViewState.DefaultPageSize,
			PageSizeOptions: vs.DefaultPageSizeOptions,
			MultiSort:       cfg.ViewState.MultiSort,
		}
	}
	viewStore := cache.NewViewStateStore(rdb, cfg.ViewState.KeyPrefix, cfg.ViewState.TTL, tableOpts, log.Component("viewstate"))
	views := appvs.NewController(viewStore, tableOpts, log.Component("viewstate"))

	// ERP: un solo cliente implementa los gateways de auth, pré-notas y doca
	erpClient := erp.NewClient(cfg.ERP, log.Component("erp"))

	auditUC := audit.NewUseCase(postgres.NewAuditRepository(pool), log.Component("audit"))
	authUC := auth.NewAuthUseCase(erpClient, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	preNoteUC := prenote.NewUseCase(erpClient, views, auditUC, log.Component("prenote"))
	dockUC := dock.NewUseCase(erpClient, views, auditUC, log.Component("dock"))
	draftUC := draft.NewUseCase(draft.Deps{
		Drafts:           postgres.NewDraftRepository(pool),
		Submissions:      postgres.NewSubmissionRepository(pool),
		Tx:               postgres.NewTxRunner(pool),
		Gateway:          erpClient,
		NFe:              nfe.NewParser(),
		PDF:              infrapdf.NewMarotoPDFGenerator(),
		Audit:            auditUC,
		StaleSubmitAfter: cfg.Draft.StaleSubmitAfter,
	}, log.Component("draft"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Draft.MaxNFeBytes,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.ERP.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(logger.RequestLogger(log, httpRouter.GetUserID))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.Docs.SwaggerPath,
		Path:     "docs",
		Title:    "Hub Portal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Views:     views,
		PreNoteUC: preNoteUC,
		DockUC:    dockUC,
		DraftUC:   draftUC,
		AuditUC:   auditUC,
		JWTSecret: cfg.JWT.Secret,
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

	// los envíos en curso al ERP terminan antes de cerrar
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ERP.Timeout+5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
