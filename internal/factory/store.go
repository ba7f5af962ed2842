package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/config"
	storepkg "github.com/memoryfriend/memory-friend/server/internal/store"
	storepg "github.com/memoryfriend/memory-friend/server/internal/store/postgres"
	storelite "github.com/memoryfriend/memory-friend/server/internal/store/sqlite"
)

// NewStore builds the store implementation selected by config.
// For postgres a bootstrap check runs asynchronously so startup stays fast;
// for sqlite the schema is applied inline since the file is local.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("MEMORY_FRIEND_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, err
		}

		go func() {
			bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := storepg.Bootstrap(bootCtx, dsn); err != nil {
				log.Warn().Err(err).Msg("postgres bootstrap check failed")
			} else {
				log.Debug().Msg("postgres bootstrap check completed")
			}
		}()

		return storepg.NewWithDB(db), nil
	case "sqlite":
		db, err := storelite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := storelite.ApplySchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
		return storelite.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
