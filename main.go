package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"legend-hub/internal/config"
	"legend-hub/internal/evidence"
	"legend-hub/internal/httpapi"
	"legend-hub/internal/logger"
	"legend-hub/internal/memstore"
	"legend-hub/internal/pgstore"
	"legend-hub/internal/portal"
	"legend-hub/internal/session"
)

func main() {
	log := logger.NewLogger("legend-hub")
	defer log.Sync()

	cfg, loadedEnv, err := config.LoadConfig()
	if err != nil {
		log.Fatal("config", "error", err)
	}
	if !loadedEnv {
		log.Debug("no .env file, using process environment")
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	var store portal.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store = memstore.New()
	default:
		pool := pgstore.MustDB(cfg.DatabaseURL, cfg.DBMaxConns, log.Named("pgstore"))
		defer pool.Close()
		if cfg.MigrateOnStartup {
			mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := pgstore.Migrate(mctx, pool)
			cancel()
			if err != nil {
				log.Fatal("migrate", "error", err)
			}
		}
		store = pgstore.New(pool, log.Named("pgstore"))
	}

	var revocations session.Revocations = session.NewMemoryRevocations()
	if cfg.RedisAddr != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal("redis", "error", err)
		}
		defer rdb.Close()
		revocations = session.NewRedisRevocations(rdb)
	}

	ev, err := evidence.NewStore(cfg.EvidenceDir)
	if err != nil {
		log.Fatal("evidence store", "error", err)
	}

	svc := portal.NewService(store, log.Named("portal"), portal.WithStaffHandles(cfg.StaffHandles...))
	r := httpapi.NewRouter(httpapi.Deps{
		Service:         svc,
		Sessions:        session.NewManager(cfg.JWTSecret, cfg.SessionTTL, revocations),
		Evidence:        ev,
		Log:             log.Named("http"),
		CookieSecure:    cfg.CookieSecure,
		LoginRatePerMin: cfg.LoginRatePerMin,
		StaticDir:       cfg.StaticDir,
	})

	log.Info("listening", "port", cfg.Port, "store", cfg.StoreDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
