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

	appanalytics "github.com/jhoicas/hoacuong-agri/internal/application/analytics"
	"github.com/jhoicas/hoacuong-agri/internal/application/auth"
	"github.com/jhoicas/hoacuong-agri/internal/application/purchase"
	"github.com/jhoicas/hoacuong-agri/internal/bootstrap"
	infrapdf "github.com/jhoicas/hoacuong-agri/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/hoacuong-agri/internal/interfaces/http"
	"github.com/jhoicas/hoacuong-agri/pkg/config"
	"github.com/jhoicas/hoacuong-agri/pkg/logger"
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
		log.Fatal().Msg("JWT_SECRET es obligatorio para el servidor HTTP")
	}

	ctx := context.Background()
	rt, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar runtime")
	}
	defer rt.Close()

	// Restaura la sesión guardada del dispositivo y hace la carga inicial.
	if err := rt.Ctrl.Start(ctx); err != nil {
		log.Error().Err(err).Msg("restaurar sesión")
	}

	authUC := auth.NewAuthUseCase(rt.Ctrl, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	dashboardUC := appanalytics.NewDashboardUseCase(rt.Ctrl)

	// PDF: phiếu thu mua con código QR
	receiptUC := purchase.NewReceiptUseCase(rt.Ctrl.Purchases, rt.Ctrl.Areas, rt.Ctrl, infrapdf.NewMarotoReceiptGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Remote.Timeout() + 10*time.Second,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 << 20,
		Immutable:    true,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Hoa Cương API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":          "ok",
			"service":         cfg.App.Name,
			"remote":          cfg.Remote.Driver,
			"connectionError": rt.Ctrl.ConnectionError(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ctrl:         rt.Ctrl,
		AuthUC:       authUC,
		DashboardUC:  dashboardUC,
		ReceiptUC:    receiptUC,
		Inbox:        rt.Inbox,
		FileContent:  rt.FileContent,
		RemoteTotals: rt.RemoteTotals,
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
