package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/propschema/internal/adapters/file"
	"github.com/aretw0/propschema/internal/adapters/redis"
	"github.com/aretw0/propschema/internal/presentation/tui"
	"github.com/aretw0/propschema/pkg/persistence/middleware"
	"github.com/aretw0/propschema/pkg/ports"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Check and publish catalog documents",
	}
	cmd.PersistentFlags().String("redis", "", "Redis address (overrides redis.addr)")
	cmd.PersistentFlags().String("dir", "", "Directory store (overrides store.dir and redis)")
	cmd.AddCommand(newCatalogCheckCmd(a), newCatalogPushCmd(a))
	return cmd
}

func newCatalogCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every catalog document and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := tui.NewPrinter(out, tui.Profile(out))

			invalid := false
			for _, s := range c.Schemas() {
				v, err := c.Validator(s.ResourceType, s.Version)
				if err != nil {
					return err
				}
				result := v.ValidateSchema()
				if !result.Valid {
					invalid = true
				}
				p.Report(s.Key(), result)
			}
			if invalid {
				return errInvalid
			}
			return nil
		},
	}
}

func newCatalogPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Publish the catalog to a catalog store",
		Long: `Saves every schema of the catalog into Redis or a directory store so that
servers started with "serve --source store" share it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}
			store, done, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer done()

			if err := c.Publish(cmd.Context(), store); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tui.NewPrinter(out, tui.Profile(out)).Success(fmt.Sprintf("published %d schemas", c.Len()))
			return nil
		},
	}
}

// openStore opens the catalog store: Redis when an address is given by --redis
// or redis.addr, otherwise the directory given by --dir or store.dir. The store
// is wrapped in encryption when store.encryption_key is set.
func (a *app) openStore(cmd *cobra.Command) (ports.CatalogStore, func() error, error) {
	redisAddr := a.cfg.Redis.Addr
	if f := cmd.Flags().Lookup("redis"); f != nil && f.Changed {
		redisAddr = f.Value.String()
	}
	dir := a.cfg.Store.Dir
	if f := cmd.Flags().Lookup("dir"); f != nil && f.Changed {
		dir = f.Value.String()
		redisAddr = ""
	}

	var (
		store ports.CatalogStore
		done  = func() error { return nil }
	)
	switch {
	case redisAddr != "":
		rs := redis.New(redisAddr, a.cfg.Redis.Password, a.cfg.Redis.DB,
			redis.WithPrefix(a.cfg.Redis.Prefix),
			redis.WithTTL(time.Duration(a.cfg.Redis.TTL)),
		)
		if err := rs.Ping(cmd.Context()); err != nil {
			rs.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", redisAddr, err)
		}
		store, done = rs, rs.Close
		a.logger.Debug("Using redis catalog store", "addr", redisAddr)
	case dir != "":
		store = file.New(dir)
		a.logger.Debug("Using directory catalog store", "dir", dir)
	default:
		return nil, nil, errors.New("no catalog store: pass --redis or --dir, or set redis.addr or store.dir")
	}

	if a.cfg.Store.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(a.cfg.Store.EncryptionKey, a.cfg.Store.FallbackKeys...)
		if err != nil {
			done()
			return nil, nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			done()
			return nil, nil, err
		}
		store = middleware.Chain(store, mw)
	}
	return store, done, nil
}
