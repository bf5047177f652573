package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-parish-platform/internal/auth"
	"go-parish-platform/internal/cache"
	"go-parish-platform/internal/config"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/handler"
	"go-parish-platform/internal/logger"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/storage"
	"go-parish-platform/internal/view"
	"go-parish-platform/web"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure PARISH_SESSION_SECRET_KEY environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(&cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer("mysql", cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	pageCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer pageCache.Close()
	log.Info("Cache initialized.")

	// --- Media Storage ---
	mediaStore := storage.New(cfg.Storage.Root, cfg.Storage.PublicBase)

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	parishRepository := data.NewParishRepository(db)
	pageRepository := data.NewSQLPageRepository(db)
	eventRepository := data.NewEventRepository(db)
	scheduleRepository := data.NewScheduleRepository(db)
	announcementRepository := data.NewAnnouncementRepository(db)
	sermonRepository := data.NewSermonRepository(db)
	donationRepository := data.NewDonationRepository(db)

	parishService := service.NewParishService(parishRepository)
	pageService := service.NewPageService(pageRepository, pageCache)
	calendarService := service.NewCalendarService(eventRepository, scheduleRepository, log)
	announcementService := service.NewAnnouncementService(announcementRepository)
	sermonService := service.NewSermonService(sermonRepository, mediaStore)
	donationService := service.NewDonationService(donationRepository)

	handlers := handler.Handlers{
		Pages:         handler.NewPageHandler(pageService, viewService, log),
		Builder:       handler.NewBuilderHandler(pageService, log),
		Calendar:      handler.NewCalendarHandler(calendarService, parishService, viewService, log),
		Announcements: handler.NewAnnouncementHandler(announcementService, parishService, viewService),
		Sermons:       handler.NewSermonHandler(sermonService, parishService, viewService),
		Donations:     handler.NewDonationHandler(donationService, parishService, viewService),
		Parishes:      handler.NewParishHandler(parishService, viewService),
		Media:         handler.NewMediaHandler(mediaStore, log),
		Auth:          handler.NewAuthHandler(authenticator, sessionManager),
		Seo:           handler.NewSeoHandler(pageService, parishService, cfg.Server.BaseURL),
	}
	middlewares := handler.Middlewares{
		Session:       sessionManager.LoadAndSave,
		Authorize:     middleware.Authorizer(enforcer, sessionManager),
		ResolveTenant: middleware.ResolveParish(parishRepository),
		Errors:        middleware.Error(log, viewService),
	}

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		log.Fatal(err, "Failed to mount static assets")
	}

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(handlers, middlewares, staticFS)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
