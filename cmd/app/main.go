package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/auth"
	"github.com/wichananm65/sheshape-backend/internal/category"
	"github.com/wichananm65/sheshape-backend/internal/config"
	"github.com/wichananm65/sheshape-backend/internal/database"
	"github.com/wichananm65/sheshape-backend/internal/product"
	"github.com/wichananm65/sheshape-backend/internal/profile"
	"github.com/wichananm65/sheshape-backend/internal/storage"
	"github.com/wichananm65/sheshape-backend/internal/user"
	"github.com/wichananm65/sheshape-backend/internal/validation"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setLogLevel(cfg.LogLevel)
	log.Infof("starting with %s", cfg)

	db, err := database.Open(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db)

	if cfg.AutoMigrate {
		// users first: profiles reference them
		if err := database.Migrate(db, &user.User{}, &profile.Profile{}, &profile.FitnessProfile{}, &product.Product{}); err != nil {
			log.Fatalf("%v", err)
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.Handler,
		// leave room for multipart overhead around the largest allowed image
		BodyLimit: int(cfg.MaxUploadBytes) + 1<<20,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	setupCORS(app, cfg.CORSOrigins)

	v := validation.New()
	files := storage.NewLocal(cfg.UploadDir, "/uploads")

	userService := user.NewService(user.NewGormRepository(db))
	userHandler := user.NewHandler(userService, v, cfg.JWTSecret, cfg.JWTTTL)

	profileService := profile.NewService(profile.NewGormRepository(db), userService, files, cfg.MaxUploadBytes)
	profileHandler := profile.NewHandler(profileService, v)
	userService.OnDelete(profileService.ReleaseUser)

	productService := product.NewService(product.NewGormRepository(db))
	productHandler := product.NewHandler(productService, v, cfg.AllowResetProducts)

	categoryHandler := category.NewHandler(category.NewService(category.NewGormRepository(db)))

	if cfg.AdminEmail != "" {
		if err := userService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "DOWN"})
		}
		return c.JSON(fiber.Map{"status": "UP"})
	})

	// make uploaded files public
	app.Static("/uploads", cfg.UploadDir)

	userHandler.RegisterPublicRoutes(app)
	// categories before product public routes so the path is not taken for a product id
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(auth.Middleware(cfg.JWTSecret), user.RequireActive(userService))

	userHandler.RegisterProtectedRoutes(app)
	profileHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}
