package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/study_space/configs"
	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/handlers"
	"github.com/anjiri1684/study_space/jobs"
	applog "github.com/anjiri1684/study_space/logger"
	"github.com/anjiri1684/study_space/notifications"
	"github.com/anjiri1684/study_space/obs"
	"github.com/anjiri1684/study_space/payments"
	"github.com/anjiri1684/study_space/routes"
	"github.com/anjiri1684/study_space/services"
	"github.com/anjiri1684/study_space/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}
	log := applog.Init(cfg.LogLevel, cfg.LogFormat)

	shutdownTracer := obs.InitTracer(cfg.Name, cfg.Env, cfg.OTLPEndpoint, log)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("🔥 Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("🔥 Failed to migrate database")
	}
	if err := database.SeedAdmin(db, cfg, log); err != nil {
		log.WithError(err).Fatal("🔥 Failed to seed admin")
	}

	hub := websocket.NewHub(log)
	dispatcher := events.NewDispatcher(log, hub)

	var publisher *events.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = events.NewPublisher(cfg.RabbitURL, cfg.BookingExchange, log)
		if err != nil {
			log.WithError(err).Warn("⚠️ RabbitMQ unavailable, booking events stay in-process")
		} else {
			dispatcher.Add(publisher)
		}
	}

	var mailer notifications.Mailer
	if brevo := notifications.NewBrevoService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, log); brevo != nil {
		mailer = brevo
		dispatcher.Add(notifications.NewBookingMailer(brevo, log))
	}

	bookingCfg := services.BookingConfig{
		HoldWindow:     cfg.Booking.HoldWindow,
		PriceTolerance: cfg.Booking.PriceTolerance,
		Currency:       cfg.Gateway.Currency,
	}
	gateway := payments.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	bookings := services.NewBookingService(db, log, dispatcher, bookingCfg)

	h := &handlers.Handler{
		Auth:      services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry),
		Bookings:  bookings,
		Payments:  services.NewPaymentService(db, log, dispatcher, gateway, cfg.Gateway.KeySecret, bookingCfg),
		Partners:  services.NewPartnerService(db, log, mailer),
		Locations: services.NewLocationService(db),
		Inventory: services.NewInventoryService(db),
		Reports:   services.NewReportService(db),
		Receipts:  services.NewReceiptService(db, cfg.Name),
		Hub:       hub,
		Uploads:   handlers.UploadConfig{CloudinaryURL: cfg.CloudinaryURL, Folder: cfg.CloudinaryFolder},
		Log:       log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	c := cron.New()
	if err := jobs.Schedule(c, bookings, cfg.Booking, log); err != nil {
		log.WithError(err).Fatal("🔥 Failed to schedule booking sweeps")
	}
	c.Start()
	log.Println("✅ Hold expiry and availability sweeps scheduled.")

	app := fiber.New(fiber.Config{
		AppName:           cfg.Name,
		CaseSensitive:     true,
		EnablePrintRoutes: !cfg.IsProduction(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler:      handlers.ErrorHandler(log),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to " + cfg.Name + " API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, h, cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("⚠️ HTTP shutdown")
		}
	}()

	log.Printf("✅ Server is running on %s", cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.WithError(err).Fatal("🔥 Server failed to start")
	}

	<-c.Stop().Done()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("⚠️ RabbitMQ close")
		}
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		log.WithError(err).Warn("⚠️ Tracer shutdown")
	}
	log.Println("✅ Server stopped")
}
