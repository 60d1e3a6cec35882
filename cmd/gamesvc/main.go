package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/tycoonhq/tycoon-services/configs"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/broker"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/cache"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/db"
	handlers "github.com/tycoonhq/tycoon-services/internal/gamesvc/handlers"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/service"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/settlement"
	"github.com/tycoonhq/tycoon-services/internal/gamesvc/store"
	nats "github.com/tycoonhq/tycoon-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

func init() {
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// game-by-code read cache, optional
	collab := &service.Collab{
		Publisher: broker.NewBroker(n.Conn),
	}
	gameCache, err := cache.Connect()
	if err != nil {
		log.Warnf("redis cache unavailable, reads go to the DB: %v", err)
	} else {
		defer gameCache.Close()
		collab.Cache = gameCache
	}

	// on-chain settlement mirror, optional
	settler := settlement.NewClient()
	if settler.Enabled() {
		collab.Settler = settler
	} else {
		log.Warn("SETTLEMENT_URL not set, on-chain mirroring disabled")
	}

	st := store.NewPostgresStore(dbpool)
	gameService := service.NewGameService(st, collab)
	propertyService := service.NewPropertyService(st, collab)
	tradeService := service.NewTradeService(st, collab)
	turnService := service.NewTurnService(st, collab)
	winService := service.NewWinService(st, collab)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimit := 300
	if rateLimitStr := os.Getenv("RATE_LIMIT"); rateLimitStr != "" {
		rateLimit, err = strconv.Atoi(rateLimitStr)
		if err != nil {
			log.Fatalf("Invalid RATE_LIMIT value: %v", err)
		}
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gameService, propertyService, tradeService, turnService, winService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
