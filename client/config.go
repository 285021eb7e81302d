package client

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/repairtrack/repairdb/config"
	"github.com/repairtrack/repairdb/contrib/cache"
)

// FromConfig applies a loaded configuration. Options listed after it
// take precedence.
//
//	cfg, err := config.Load("repairdb.yaml")
//	db, err := client.Open(ctx, client.FromConfig(cfg))
func FromConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg.DatabaseURL != "" {
			o.url = cfg.DatabaseURL
		}
		if cfg.Adapter != "" {
			a, err := AdapterByName(cfg.Adapter)
			if err != nil {
				o.err = err
				return
			}
			o.adapter = a
		}
		if cfg.ErrorFormat != "" {
			o.format = ErrorFormat(cfg.ErrorFormat)
		}
		if len(cfg.Log) > 0 {
			o.logs = logDefinitions(cfg.Log)
		}
		for model, fields := range cfg.Omit {
			WithOmit(model, fields...)(o)
		}
		if cfg.Transaction.MaxWait > 0 {
			o.tx.MaxWait = cfg.Transaction.MaxWait.Std()
		}
		if cfg.Transaction.Timeout > 0 {
			o.tx.Timeout = cfg.Transaction.Timeout.Std()
		}
		if lvl, ok := isolationLevels[cfg.Transaction.IsolationLevel]; ok {
			o.tx.IsolationLevel = lvl
		}
		if cfg.SlowQuery > 0 {
			o.slowQuery = cfg.SlowQuery.Std()
		}
		if cfg.Cache.Enabled {
			o.cacheTTL = cfg.Cache.TTL.Std()
			if cfg.Cache.RedisAddr != "" {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
				o.cache = cache.NewRedis(rdb, cache.WithNamespace(cfg.Cache.Namespace))
				o.closers = append(o.closers, rdb.Close)
			} else {
				o.cache = cache.NewMemory()
			}
		}
	}
}

func logDefinitions(logs []config.Log) []LogDefinition {
	defs := make([]LogDefinition, len(logs))
	for i, l := range logs {
		defs[i] = LogDefinition{Level: EventType(l.Level), Emit: l.Emit}
	}
	return defs
}

// WatchConfig reloads the configuration file at path on change and
// applies its log definitions. It blocks until ctx is done. Invalid
// reloads are reported as warn events and leave the client unchanged.
func (c *Client) WatchConfig(ctx context.Context, path string) error {
	return config.Watch(ctx, path, 100*time.Millisecond, func(cfg *config.Config, err error) {
		if err != nil {
			c.rt.events.emit(ctx, Event{Type: EventWarn, Message: "config reload failed: " + err.Error()})
			return
		}
		c.SetLog(logDefinitions(cfg.Log)...)
		c.rt.events.infof(ctx, "configuration reloaded from %s", path)
	})
}
