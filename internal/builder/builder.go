// Package builder wires the server's dependencies from configuration.
package builder

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/accounts"
	"github.com/park285/paint-chess/internal/ai"
	"github.com/park285/paint-chess/internal/archive"
	"github.com/park285/paint-chess/internal/catalog"
	"github.com/park285/paint-chess/internal/config"
	"github.com/park285/paint-chess/internal/gamemgr"
	"github.com/park285/paint-chess/internal/notify"
	"github.com/park285/paint-chess/internal/obslog"
)

type Deps struct {
	Config   *config.AppConfig
	Catalog  *catalog.Catalog
	Accounts *accounts.Router
	Archive  *archive.Repository
	Notifier *notify.Client
	Manager  *gamemgr.Manager

	db  *sql.DB
	rdb *redis.Client
}

// New opens the configured stores and builds the match orchestrator. Missing
// DATABASE_URL or REDIS_URL fall back to in-memory stores.
func New(ctx context.Context, cfg *config.AppConfig) (*Deps, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	d := &Deps{Config: cfg}

	cat, err := catalog.New(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	d.Catalog = cat

	var persistent accounts.Store
	if cfg.DatabaseURL != "" {
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		d.db = db
		users := accounts.NewPostgres(db)
		if err := users.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("users schema: %w", err)
		}
		d.Archive = archive.NewRepository(db)
		if err := d.Archive.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("archive schema: %w", err)
		}
		persistent = users
	} else {
		obslog.L().Warn("builder_memory_accounts", zap.String("reason", "DATABASE_URL not set"))
		mem := accounts.NewMemory()
		mem.AutoProvision = true
		mem.StartRating = cfg.DefaultRating
		persistent = mem
	}

	var temp accounts.TempStore
	if cfg.RedisURL != "" {
		opts, err := parseRedisURL(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			d.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		d.rdb = rdb
		eph := accounts.NewEphemeral(rdb)
		eph.StartRating = cfg.DefaultRating
		temp = eph
	} else {
		mem := accounts.NewMemory()
		mem.StartRating = cfg.DefaultRating
		temp = mem
	}
	d.Accounts = accounts.NewRouter(persistent, temp)

	if cfg.ResultWebhookURL != "" {
		var opts []notify.Option
		if tok := cfg.WebhookToken; tok != "" {
			opts = append(opts, notify.WithHeaderProvider(func() map[string]string {
				return map[string]string{"Authorization": "Bearer " + tok}
			}))
		}
		d.Notifier = notify.NewClient(cfg.ResultWebhookURL, opts...)
	}

	mcfg := gamemgr.Config{
		Accounts:     d.Accounts,
		Catalog:      cat,
		SpawnAI:      aiSpawner(cat, cfg.AIMaxThink),
		MinSecs:      cfg.MinSecs(),
		MaxSecs:      cfg.MaxSecs(),
		EloK:         cfg.EloK,
		ChatHistory:  cfg.ChatHistory,
		ChatMaxRunes: cfg.ChatMaxRunes,
		QueueSlice:   cfg.QueueSlice,
		TickInterval: cfg.ClockTick,
		StartTimeout: cfg.StartTimeout,
	}
	// Typed nils must not reach the interface fields.
	if d.Archive != nil {
		mcfg.Archive = d.Archive
	}
	if d.Notifier != nil {
		mcfg.Notifier = d.Notifier
	}
	d.Manager = gamemgr.New(mcfg)

	obslog.L().Info("builder_ready",
		zap.Bool("postgres", d.db != nil),
		zap.Bool("redis", d.rdb != nil),
		zap.Bool("webhook", d.Notifier != nil),
	)
	return d, nil
}

func aiSpawner(cat *catalog.Catalog, maxThink time.Duration) func(*gamemgr.Manager, string) gamemgr.Sink {
	return func(m *gamemgr.Manager, username string) gamemgr.Sink {
		opts := ai.DefaultOptions()
		opts.MaxThink = maxThink
		return ai.New(m, username, cat, opts)
	}
}

// Close stops running matches and releases connections.
func (d *Deps) Close() {
	if d.Manager != nil {
		d.Manager.Close()
	}
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return nil, errors.New("missing host")
	}
	port := u.Port()
	if port == "" {
		port = "6379"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("bad port %q", port)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: host + ":" + port, Username: u.User.Username(), Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
