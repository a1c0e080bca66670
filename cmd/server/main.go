// Command server wires storage, pub/sub, locking, and the coordinator
// into a running HTTP+websocket process.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chalkitup/internal/coordinator"
	"chalkitup/internal/server/config"
	"chalkitup/internal/server/httpapi"
	"chalkitup/internal/server/ws"
	"chalkitup/internal/storage/locks"
	"chalkitup/internal/storage/pubsub"
	"chalkitup/internal/storage/sqlstore"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	server, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	logger.Info("server starting", zap.String("addr", cfg.HTTPAddr))
	if err := server.run(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// server holds every dependency the running process needs.
type server struct {
	cfg    config.Config
	log    *zap.Logger
	store  *sqlstore.Store
	bus    *pubsub.Client
	lock   *locks.Manager
	coord  *coordinator.Coordinator
	router *http.ServeMux
}

func newServer(cfg config.Config, logger *zap.Logger) (*server, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	store := sqlstore.New(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}

	bus, err := pubsub.New(pubsub.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return nil, err
	}

	lockMgr := locks.NewManager(bus.Client, logger)
	if cleaned, err := lockMgr.CleanupOrphanedLocks(context.Background()); err != nil {
		logger.Warn("orphaned lock cleanup failed", zap.Error(err))
	} else {
		logger.Info("orphaned lock cleanup complete", zap.Int("cleaned", cleaned))
	}

	coord := coordinator.New(store, bus, lockMgr, logger, nil)

	ginRouter := httpapi.NewRouter(coord, cfg.AllowedOrigins)
	hub := ws.NewHub(coord, logger)
	ginRouter.GET("/tables/:id/subscribe", hub.HandleSubscribe(cfg.AllowedOrigins))

	mux := http.NewServeMux()
	mux.Handle("/", ginRouter)

	return &server{
		cfg:    cfg,
		log:    logger,
		store:  store,
		bus:    bus,
		lock:   lockMgr,
		coord:  coord,
		router: mux,
	}, nil
}

func (s *server) run() error {
	srv := &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return srv.ListenAndServe()
}

// openDB dials the configured gorm dialect: sqlite for local/dev runs,
// mysql in production.
func openDB(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	}
}
