package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filegate/docs"
	"filegate/internal/auth"
	"filegate/internal/config"
	"filegate/internal/database"
	"filegate/internal/database/migration"
	handlers "filegate/internal/http/handler"
	"filegate/internal/http/middleware"
	"filegate/internal/otel"
	"filegate/internal/repository/postgres"
	"filegate/internal/service"
	"filegate/internal/storage"
)

// @title File Access Gateway
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize token verifier: %v", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	fileSvc := service.NewFileService(objStore, docRepo, cfg.Upload)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// The upload cap itself is enforced per file in the service, which
		// answers with a JSON envelope. The transport limit only bounds how
		// much a client can stream before being cut off, so it sits well
		// above the cap to leave room for multipart framing.
		BodyLimit: 2 * int(cfg.Upload.MaxSizeBytes),
	})

	// Register global middleware.
	// The portal front end is served from a different origin, so CORS stays
	// open; authorization is enforced per request by the bearer token.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promMiddleware, err := middleware.NewPrometheusMiddleware(promRegistry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected collaborators
	handlers.RegisterRoutes(app, db, fileSvc, verifier)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func newVerifier(cfg config.AuthConfig) (auth.Verifier, error) {
	if cfg.Mode == "remote" {
		return auth.NewRemoteVerifier(cfg.ProviderURL, cfg.ServiceKey)
	}
	return auth.NewJWTVerifier(cfg.JWTSecret)
}
