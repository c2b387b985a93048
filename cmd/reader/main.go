package main

import (
	"context"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/matst80/slask-listings/pkg/cache"
	"github.com/matst80/slask-listings/pkg/common"
	"github.com/matst80/slask-listings/pkg/config"
	"github.com/matst80/slask-listings/pkg/facet"
	"github.com/matst80/slask-listings/pkg/server"
	"github.com/matst80/slask-listings/pkg/storage"
	"github.com/matst80/slask-listings/pkg/store"
	"github.com/matst80/slask-listings/pkg/tracking"
	"github.com/matst80/slask-listings/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	amqp "github.com/rabbitmq/amqp091-go"
)

type app struct {
	gotSaveTrigger atomic.Bool
	cfg            *config.Config
	conn           *amqp.Connection
	tracker        tracking.Tracking
	storage        types.StorageProvider
	store          *store.MemoryStore
	facets         *cache.CachedEngine
	changes        *common.QueueHandler[types.ListingChange]
}

func (a *app) save() error {
	if !a.gotSaveTrigger.Swap(false) {
		return nil
	}
	log.Println("Saving listings due to trigger")
	if err := a.storage.SaveListings(a.store.All()); err != nil {
		a.gotSaveTrigger.Store(true)
		return err
	}
	return nil
}

func (a *app) saveLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.SaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.save(); err != nil {
				log.Printf("Failed to save listings: %v", err)
			}
		}
	}
}

func (a *app) invalidate(ctx context.Context) {
	if err := a.facets.Invalidate(ctx); err != nil {
		log.Printf("Failed to invalidate facet cache: %v", err)
	}
	a.gotSaveTrigger.Store(true)
}

func newSnapshotCache(cfg *config.Config) cache.SnapshotCache {
	local := cache.NewLocalCache(cfg.CacheSize, cfg.CacheTTL)
	if cfg.RedisUrl == "" {
		return local
	}
	redisCache := cache.NewRedisCache(cfg.RedisUrl, cfg.RedisPassword, 0, cfg.CacheTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		log.Printf("Redis not reachable, using local cache only: %v", err)
		redisCache.Close()
		return local
	}
	return cache.Tiered{local, redisCache}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	logCfg := common.DefaultLogConfig()
	logCfg.FilePath = cfg.LogFile
	closeLog, err := common.SetupLogging(logCfg)
	if err != nil {
		log.Fatalf("Could not set up logging: %v", err)
	}
	defer closeLog()

	listingStore := store.NewMemoryStore()
	diskStorage := storage.NewDiskStorage(cfg.Country, cfg.DataDir)
	if err := diskStorage.LoadListings(listingStore); err != nil {
		log.Printf("Could not load listings from storage: %v", err)
	}
	log.Printf("Loaded %d listings", listingStore.Len())

	snapshots := newSnapshotCache(cfg)
	app := &app{
		cfg:     cfg,
		storage: diskStorage,
		store:   listingStore,
		facets:  cache.NewCachedEngine(facet.NewEngine(listingStore, facet.EngineOptions{MaxConcurrency: 8}), snapshots),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RabbitUrl != "" {
		app.ConnectAmqp(cfg.RabbitUrl)
	}

	ws := &server.WebServer{
		Facets:    app.facets,
		Store:     listingStore,
		Writer:    listingStore,
		Cache:     app.facets,
		Auth:      &server.AdminAuth{ApiKey: cfg.AdminApiKey, Secret: []byte(cfg.AdminSecret)},
		OnChanged: func() { app.gotSaveTrigger.Store(true) },
	}
	if app.changes != nil {
		ws.Changes = app.changes
	}
	if app.tracker != nil {
		ws.Tracking = app.tracker
	}

	mux := ws.Handle()
	mux.HandleFunc("GET /api/get/{id}", common.JsonHandler(app.GetListing))
	mux.HandleFunc("GET /api/save-trigger", common.JsonHandler(app.SaveTrigger))

	debugMux := http.NewServeMux()
	debugMux.Handle("/metrics", promhttp.Handler())

	go app.saveLoop(ctx)

	timeouts := common.DefaultTimeoutConfig()
	common.RunServersWithShutdown(ctx, timeouts, []common.NamedServer{
		{Name: "facets", Server: common.NewServerWithTimeouts(&http.Server{Addr: cfg.ListenAddress, Handler: mux}, timeouts)},
		{Name: "debug", Server: &http.Server{Addr: cfg.DebugAddress, Handler: debugMux}},
	},
		func(ctx context.Context) error {
			cancel()
			return app.save()
		},
		func(ctx context.Context) error {
			if app.changes != nil {
				app.changes.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			if app.conn != nil {
				return app.conn.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			return snapshots.Close()
		},
		func(ctx context.Context) error {
			return listingStore.Close()
		},
	)
	log.Println("Server gracefully stopped")
}
