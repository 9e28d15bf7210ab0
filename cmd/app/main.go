package main

import (
	"database/sql"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andrevlopes/catalog-admin-backend/internal/archive"
	"github.com/andrevlopes/catalog-admin-backend/internal/category"
	"github.com/andrevlopes/catalog-admin-backend/internal/config"
	"github.com/andrevlopes/catalog-admin-backend/internal/product"
	"github.com/andrevlopes/catalog-admin-backend/internal/storage"
	"github.com/andrevlopes/catalog-admin-backend/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	_ = godotenv.Load()
	cfg := config.Load()

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	if err := bootstrapSchema(db); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap schema")
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLogger)

	userHandler := user.NewHandler(user.NewService(user.NewPostgresRepository(db)))
	userHandler.RegisterPublicRoutes(app)

	// uploaded product images are public
	app.Static("/uploads", cfg.UploadDir)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)

	categoryService := category.NewService(category.NewPostgresRepository(db))
	category.NewHandler(categoryService).RegisterProtectedRoutes(app)

	productRepo := product.NewPostgresRepository(db)
	archiveRepo := archive.NewPostgresRepository(db)
	store := storage.NewDiskStorage(cfg.UploadDir)
	productService := product.NewService(productRepo, archiveRepo, store, categoryService)
	product.NewHandler(productService).RegisterProtectedRoutes(app)

	log.Info().Str("addr", cfg.Addr).Msg("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Info().
		Str("method", c.Method()).
		Str("path", c.OriginalURL()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open postgres")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping postgres")
	}
	return db
}

// bootstrapSchema creates the tables on first run so a fresh database works
// out of the box.
func bootstrapSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			status BOOLEAN NOT NULL DEFAULT TRUE,
			parent_id INT REFERENCES categories(id),
			user_id INT NOT NULL REFERENCES users(id),
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			description TEXT,
			status BOOLEAN NOT NULL DEFAULT TRUE,
			category_id INT NOT NULL REFERENCES categories(id),
			user_id INT NOT NULL REFERENCES users(id),
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS archives (
			id SERIAL PRIMARY KEY,
			filename TEXT,
			extension TEXT,
			archive TEXT NOT NULL,
			path TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS archive_product (
			archive_id INT NOT NULL REFERENCES archives(id),
			product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			PRIMARY KEY (archive_id, product_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
