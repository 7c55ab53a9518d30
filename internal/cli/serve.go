package cli

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/config"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/delivery/http"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/export"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
)

func (app *CLIApp) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, app.cfg)
		},
	}
}

// newFiberApp builds the HTTP app with the standard middleware stack
func newFiberApp(d *deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Datathon Dashboard API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, http.NewHandler(d.forecastSvc, d.analyticsSvc, d.repo, d.cache))
	return app
}

func serve(cmd *cobra.Command, cfg config.Config) error {
	d, err := bootstrap(commandContext(cmd), cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	// Scheduled snapshots
	var scheduler *service.SnapshotScheduler
	if cfg.SnapshotCron != "" {
		scheduler = service.NewSnapshotScheduler(d.forecastSvc, cfg.SnapshotCron)
		exporter := export.NewExporter(cfg.ExportDir)
		scheduler.OnSnapshot = func(snap service.Snapshot) error {
			path, err := exporter.ToJSON(snap, "snapshot")
			if err != nil {
				return err
			}
			log.Printf("[snapshot] report written to %s", path)
			return nil
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	app := newFiberApp(d)

	// Graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		if scheduler != nil {
			scheduler.Stop()
		}
		return err
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	d.forecastSvc.WaitBackground()
	log.Println("Server exited gracefully")
	return nil
}
