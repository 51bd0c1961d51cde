package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/selamgames/bingo-engine/config"
	"github.com/selamgames/bingo-engine/controllers"
	"github.com/selamgames/bingo-engine/engine"
	"github.com/selamgames/bingo-engine/routes"
	"github.com/selamgames/bingo-engine/services"
	"github.com/selamgames/bingo-engine/utils/logger"
)

// setupRouter initializes Gin routes and middleware.
func setupRouter(api *controllers.API, gateway *services.Gateway) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, api)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket room endpoint
	r.GET("/ws/:room", gateway.Handle)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}

	roomConfigs, err := config.LoadRooms(cfg.RoomsFile)
	if err != nil {
		logger.Fatalf("rooms: %v", err)
	}

	wallet := services.NewWallet(db)
	store := services.NewGameStore(db)
	hub := services.NewHub(logger.Log)

	registry := engine.NewRegistry(engine.Deps{
		Balance:  wallet,
		Store:    store,
		Notifier: hub,
		Log:      logger.Log,
	})
	for _, rc := range roomConfigs {
		if _, err := registry.Create(rc); err != nil {
			logger.Fatalf("create room %s: %v", rc.ID, err)
		}
	}
	logger.Infof("started %d rooms", len(roomConfigs))

	api := &controllers.API{DB: db, Registry: registry, Wallet: wallet, Store: store}
	gateway := services.NewGateway(registry, hub, logger.Log)
	router := setupRouter(api, gateway)

	// Stop callers and timers on shutdown so no scheduled work leaks.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Infof("shutting down")
		registry.TeardownAll()
		os.Exit(0)
	}()

	logger.Infof("bingo engine listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
