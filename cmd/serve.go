package cmd

import (
	"time"

	"dbt-metabase/core/loader"
	"dbt-metabase/core/logger"
	"dbt-metabase/core/middleware/auth"
	"dbt-metabase/core/middleware/rayid"
	"dbt-metabase/feature/export"
	"dbt-metabase/feature/history"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "dbt-metabase/docs/swagger"
)

// @title dbt-metabase API
// @version 1.0
// @description Pushes dbt manifest metadata to Metabase and records export runs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the export HTTP server",
	Long:  `Starts the HTTP server exposing export runs and their history.`,
	RunE:  runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Wire configuration, storage, history and the export pipeline
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	logg := rt.logger
	defer func() { _ = logg.Sync() }()
	if err := rt.withExport(); err != nil {
		return err
	}

	// 2. Initialize Fiber App
	app := newApp(rt)

	// 3. Start Server
	errc := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
		errc <- app.Listen(rt.cfg.Server.Address())
	}()

	// 4. Graceful Shutdown
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logg.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// newApp builds the Fiber application with middleware and features.
func newApp(rt *runtime) *fiber.App {
	logg := rt.logger
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           rt.cfg.Server.ReadTimeout(),
		WriteTimeout:          rt.cfg.Server.WriteTimeout(),
	})

	// 1. RayID (Must be first to trace everything)
	app.Use(rayid.New())

	// 2. Request logging with the RayID
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		start := time.Now()
		err := c.Next()
		l.Info("Request handled",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// 3. Public routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/swagger/*", swagger.HandlerDefault)

	// 4. Auth (everything registered after this is protected)
	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

	// 5. Load Features
	mgr := loader.NewManager(logg)
	mgr.Register(export.NewFeature(rt.service))
	mgr.Register(history.NewFeature(rt.runs, logg))
	if err := mgr.LoadAll(app); err != nil {
		logg.Fatal("Failed to load features", zap.Error(err))
	}

	return app
}
