// Service entry point: reads configuration, wires the record store and the
// geodata caches, then serves the map API. Routes live in internal/api.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/api"
	"github.com/anoopt/rto-codes-sub000/internal/geocache"
	"github.com/anoopt/rto-codes-sub000/internal/geodata"
	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/metrics"
	"github.com/anoopt/rto-codes-sub000/internal/middleware"
	"github.com/anoopt/rto-codes-sub000/internal/migrate"
	"github.com/anoopt/rto-codes-sub000/internal/records"
	"github.com/anoopt/rto-codes-sub000/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	apiBase := strings.TrimSuffix(utils.EnvString("API_BASE", "/api"), "/")
	dataDir := utils.EnvString("DATA_DIR", "data")
	l.Debug("config_dirs", "api_base", apiBase, "data", dataDir)

	ctx := context.Background()
	store, reload, closeStore := openRecords(ctx, l, dataDir)
	defer closeStore()

	src := geodataSource(dataDir)
	opts := geocache.Options{
		Store:       persistedTier(ctx),
		NegativeTTL: utils.EnvDuration("NEGATIVE_TTL_M", time.Minute, 0),
	}
	bk := geocache.Boundaries
	bk.TTL = utils.EnvDuration("BOUNDARY_TTL_H", time.Hour, bk.TTL)
	ck := geocache.Coordinates
	ck.TTL = utils.EnvDuration("COORD_TTL_H", time.Hour, ck.TTL)
	boundaries := geocache.New(bk, geodata.BoundaryLoader(src), opts)
	coordinates := geocache.New(ck, geodata.CoordinateLoader(src), opts)
	for _, k := range []geocache.Kind{boundaries.Kind(), coordinates.Kind()} {
		l.Info("geocache_ready", "kind", k.Name, "prefix", k.Prefix, "ttl", k.TTL.String())
	}

	apiRouter := api.BuildRoutes(api.Deps{
		Records:     store,
		Boundaries:  boundaries,
		Coordinates: coordinates,
		Reload:      reload,
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
	})

	root := chi.NewRouter()
	root.Use(logger.AccessMiddleware(l))
	root.Use(middleware.RateLimitFromEnv())
	root.Handle(apiBase+"/metrics", metrics.Handler())
	root.Mount(apiBase, apiRouter)

	addr := utils.EnvString("ADDR", ":8080")
	s := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}
	l.Info("listening", "addr", addr, "base", apiBase)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
}

// openRecords picks the record store from RECORD_STORE. The file store sits
// behind records.Dynamic so /reload-records can swap in a fresh tree.
func openRecords(ctx context.Context, l *slog.Logger, dataDir string) (records.Store, func(context.Context) error, func()) {
	switch utils.EnvString("RECORD_STORE", "file") {
	case "postgres":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		return records.AttachDB(db), nil, func() { _ = db.Close() }
	default:
		dir := utils.EnvString("RECORDS_DIR", filepath.Join(dataDir, "states"))
		var dyn records.Dynamic
		fs, err := records.OpenFileStore(dir)
		if err != nil {
			l.Error("records_open_error", "dir", dir, "err", err)
			os.Exit(1)
		}
		dyn.Set(fs)
		reload := records.FileReloader(dir, &dyn)
		records.StartReloader(ctx, utils.EnvDuration("RECORDS_RELOAD_M", time.Minute, 0), reload)
		return &dyn, reload, func() {}
	}
}

// geodataSource prefers files under DATA_DIR and falls back to
// GEODATA_BASE_URL when one is configured.
func geodataSource(dataDir string) geodata.Chain {
	chain := geodata.Chain{geodata.DirSource{Root: dataDir}}
	if base := os.Getenv("GEODATA_BASE_URL"); base != "" {
		chain = append(chain, geodata.HTTPSource{
			BaseURL: base,
			Client:  &http.Client{Timeout: 10 * time.Second},
		})
		logger.L().Info("geodata_remote", "base", base)
	}
	return chain
}

// persistedTier is Redis when enabled and reachable, a directory store when
// CACHE_DIR is set, and nothing otherwise.
func persistedTier(ctx context.Context) geocache.Store {
	l := logger.L()
	if rc := utils.OpenRedisFromEnv(); rc != nil {
		if err := utils.PingRedis(ctx, rc); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
			return geocache.NewRedisStore(rc)
		}
	} else {
		l.Info("redis_disabled")
	}
	if dir := os.Getenv("CACHE_DIR"); dir != "" {
		ds, err := geocache.NewDirStore(dir)
		if err == nil {
			l.Info("geocache_dir_store", "dir", dir)
			return ds
		}
		l.Error("geocache_dir_store_error", "dir", dir, "err", err)
	}
	return geocache.NopStore{}
}
