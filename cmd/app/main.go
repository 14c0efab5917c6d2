package main

import (
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/velmore/clothes-shop-backend/internal/cart"
	"github.com/velmore/clothes-shop-backend/internal/config"
	"github.com/velmore/clothes-shop-backend/internal/favorite"
	"github.com/velmore/clothes-shop-backend/internal/order"
	"github.com/velmore/clothes-shop-backend/internal/product"
	"github.com/velmore/clothes-shop-backend/internal/realtime"
	"github.com/velmore/clothes-shop-backend/internal/upload"
	"github.com/velmore/clothes-shop-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	// single in-process broker backing every live view
	broker := realtime.NewBroker()

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService)

	productHandler := product.NewHandler(product.NewService(product.NewPostgresRepository(db)))
	cartHandler := cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db), broker))
	orderHandler := order.NewHandler(order.NewService(order.NewPostgresRepository(db), broker))
	favoriteHandler := favorite.NewHandler(favorite.NewService(favorite.NewPostgresRepository(db), broker))
	uploadHandler := upload.NewHandler(cfg.UploadDir, "/uploads")
	realtimeHandler := realtime.NewHandler(broker)

	// public surface: auth, catalog reads, uploaded images
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	app.Static("/uploads", cfg.UploadDir)

	// everything registered from here on requires a valid token
	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	favoriteHandler.RegisterProtectedRoutes(app)
	realtimeHandler.RegisterProtectedRoutes(app)

	productHandler.RegisterAdminRoutes(app, user.RequireAdmin)
	orderHandler.RegisterAdminRoutes(app, user.RequireAdmin)
	uploadHandler.RegisterAdminRoutes(app, user.RequireAdmin)
	realtimeHandler.RegisterAdminRoutes(app, user.RequireAdmin)

	log.Printf("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

// ensureSchema creates the tables this service reads and writes. The
// uniqueness constraint on (cart_id, product_id, size) closes the
// duplicate-line race at the data layer, and favourites are unique per
// (user, product) so toggling is well defined.
func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
			image_url TEXT NOT NULL DEFAULT '',
			sizes TEXT[] NOT NULL DEFAULT '{}',
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users (id)
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			cart_id UUID NOT NULL REFERENCES carts (id),
			product_id INT NOT NULL REFERENCES products (id),
			size TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			UNIQUE (cart_id, product_id, size)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id),
			full_name TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL,
			postal_code TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL,
			total_price NUMERIC NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id UUID NOT NULL REFERENCES orders (id),
			product_id INT NOT NULL REFERENCES products (id),
			size TEXT NOT NULL,
			quantity INT NOT NULL,
			price NUMERIC NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS favourites (
			user_id UUID NOT NULL REFERENCES users (id),
			product_id INT NOT NULL REFERENCES products (id),
			UNIQUE (user_id, product_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
