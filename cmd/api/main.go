package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/maisonlux/ateliergo/internal/assignments"
	"github.com/maisonlux/ateliergo/internal/catalog"
	"github.com/maisonlux/ateliergo/internal/config"
	"github.com/maisonlux/ateliergo/internal/database"
	"github.com/maisonlux/ateliergo/internal/handlers"
	"github.com/maisonlux/ateliergo/internal/inventory"
	"github.com/maisonlux/ateliergo/internal/models"
	"github.com/maisonlux/ateliergo/internal/notify"
	"github.com/maisonlux/ateliergo/internal/orders"
	"github.com/maisonlux/ateliergo/internal/stages"
	"github.com/maisonlux/ateliergo/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Synchronize schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.Workflow{},
		&models.WorkflowStage{},
		&models.WorkflowTask{},
		&models.Order{},
		&models.ServiceItem{},
		&models.InventoryItem{},
		&models.Member{},
		&models.CatalogService{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire application services
	st := store.New(db)

	hub := notify.NewHub(cfg.Notify.DebounceWindow)
	go hub.Run()

	cat := catalog.New(st, cfg.Catalog.TTL)
	engine := stages.New(st, cat, hub)
	deductor := inventory.NewDeductor(st)
	orderSvc := orders.NewService(st, cat, engine, deductor, hub)
	assignCache := assignments.NewCache(st)

	// 5. Pre-warm the workflow catalog and keep it warm
	scheduler := cron.New()
	warm := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := cat.Workflows(ctx); err != nil {
			log.Printf("⚠️ Catalog warm-up failed: %v", err)
		}
	}
	warm()
	if _, err := scheduler.AddFunc(cfg.Catalog.WarmSchedule, warm); err != nil {
		log.Printf("⚠️ Could not schedule catalog warm-up: %v", err)
	}
	scheduler.Start()

	// 6. Set up HTTP router
	router := handlers.NewRouter(handlers.Deps{
		Config:      cfg,
		Store:       st,
		Catalog:     cat,
		Orders:      orderSvc,
		Engine:      engine,
		Assignments: assignCache,
		Hub:         hub,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// 7. Start server with graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	scheduler.Stop()

	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
