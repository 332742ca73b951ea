package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	redisadapter "github.com/bookms/bookms-admin/internal/adapters/redis"
	"github.com/bookms/bookms-admin/internal/bootstrap"
)

type clearStorageOptions struct {
	Client string
	All    bool
	DryRun bool
	Yes    bool
}

func parseClearStorageFlags(args []string) (clearStorageOptions, error) {
	fs := newFlagSet("clear-storage")
	var opts clearStorageOptions
	fs.StringVar(&opts.Client, "client", "", "Client id whose namespace to clear")
	fs.BoolVar(&opts.All, "all", false, "Clear every client namespace")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print the namespaces that would be cleared")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return clearStorageOptions{}, err
	}
	if (opts.Client == "") == !opts.All {
		return clearStorageOptions{}, errors.New("exactly one of --client or --all is required")
	}
	return opts, nil
}

func withStorage(cmdCtx *commandContext, f func(context.Context, *redisadapter.StorageProvider) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	client, err := bootstrap.OpenRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()
	return f(ctx, newStorageProvider(client, cmdCtx))
}

func newStorageProvider(client redis.UniversalClient, cmdCtx *commandContext) *redisadapter.StorageProvider {
	return redisadapter.NewStorageProvider(client, redisadapter.StorageOptions{
		Prefix: cmdCtx.Config.Storage.KeyPrefix,
		TTL:    cmdCtx.Config.Storage.TTL,
	})
}

type clientEntry struct {
	ID   string            `json:"id"`
	Keys map[string]string `json:"keys,omitempty"`
}

func runListClients(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("list-clients")
	var out outputOptions
	withValues := fs.Bool("values", false, "Include each namespace's stored values")
	out.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withStorage(cmdCtx, func(ctx context.Context, p *redisadapter.StorageProvider) error {
		entries, err := listClients(ctx, p, *withValues)
		if err != nil {
			return err
		}
		return printJSON(cmdCtx.Out, entries, out.Query)
	})
}

func listClients(ctx context.Context, p *redisadapter.StorageProvider, withValues bool) ([]clientEntry, error) {
	ids, err := p.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]clientEntry, 0, len(ids))
	for _, id := range ids {
		e := clientEntry{ID: id}
		if withValues {
			if e.Keys, err = p.Dump(ctx, id); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func runClearStorage(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearStorageFlags(args)
	if err != nil {
		return err
	}

	return withStorage(cmdCtx, func(ctx context.Context, p *redisadapter.StorageProvider) error {
		targets := []string{opts.Client}
		if opts.All {
			if targets, err = p.ListClients(ctx); err != nil {
				return err
			}
		}
		if opts.DryRun {
			return printJSON(cmdCtx.Out, targets, "")
		}
		if !opts.Yes {
			if confirmErr := confirm(fmt.Sprintf("clear %d client namespace(s)", len(targets))); confirmErr != nil {
				return confirmErr
			}
		}
		n, err := clearClients(ctx, p, targets)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "cleared %d client namespace(s)\n", n)
	})
}

func clearClients(ctx context.Context, p *redisadapter.StorageProvider, ids []string) (int, error) {
	for i, id := range ids {
		if err := p.Open(id).Clear(ctx); err != nil {
			return i, fmt.Errorf("clear client %s: %w", id, err)
		}
	}
	return len(ids), nil
}
