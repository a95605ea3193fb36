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
	log "github.com/sirupsen/logrus"

	config "github.com/mekdi/faction-services/configs"
	"github.com/mekdi/faction-services/internal/arenasvc/audit"
	"github.com/mekdi/faction-services/internal/arenasvc/broker"
	arenacfg "github.com/mekdi/faction-services/internal/arenasvc/config"
	"github.com/mekdi/faction-services/internal/arenasvc/db"
	"github.com/mekdi/faction-services/internal/arenasvc/engine"
	handlers "github.com/mekdi/faction-services/internal/arenasvc/handlers"
	"github.com/mekdi/faction-services/internal/arenasvc/service"
	"github.com/mekdi/faction-services/internal/arenasvc/store"
	"github.com/mekdi/faction-services/internal/arenasvc/vault"
	mongodb "github.com/mekdi/faction-services/internal/db"
	nats "github.com/mekdi/faction-services/internal/nats"
)

const SERVICE_NAME = "arena"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := arenacfg.Load()

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	playerStore := store.NewPlayerStore(dbpool)
	epochStore := store.NewEpochStore(dbpool)
	sessionStore := store.NewSessionStore(dbpool)
	payoutStore := store.NewPayoutStore(dbpool)

	// mongo connection for the audit trail
	mdb, cancelMongo, err := mongodb.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	log.Printf("mongo connection established successfully")

	recorder := audit.NewRecorder(mdb, cfg.AuditTTL)
	recorder.EnsureIndexes()

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// accounting engine with its external collaborators
	vaultClient := vault.NewClient(cfg.VaultURL)
	routerClient := vault.NewRouterClient(cfg.RouterURL)
	eng := engine.New(vaultClient, routerClient, vaultClient)

	if err := eng.Initialize(cfg.AdminAddress, cfg.Engine); err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	log.Infof("engine initialized, admin %s, epoch %d", cfg.AdminAddress, eng.CurrentEpoch())

	arena := service.NewArena(eng, playerStore, epochStore, sessionStore, payoutStore, recorder, n.Conn)

	// init peer message broker
	b := broker.NewBroker(n.Conn, arena)

	// subscribe to socket service
	sub, err := b.SubscribeSocketService("socket.arena")
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// subscribe to the epoch scheduler
	subSched, err := b.QueueSubscribeScheduler("arena.scheduler", "arena")
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

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
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(arena)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("ARENA_SERVICE_PORT"),
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

	sub.Unsubscribe()
	subSched.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
