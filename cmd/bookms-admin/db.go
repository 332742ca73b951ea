package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bookms/bookms-admin/internal/bootstrap"
	"github.com/bookms/bookms-admin/internal/data"
)

const defaultMigrationTimeout = 5 * time.Minute

type dbOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

func (o *dbOptions) register(fs *flag.FlagSet, what string) {
	fs.DurationVar(&o.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for "+what+" to complete")
	fs.BoolVar(&o.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")
}

func (o dbOptions) validate() error {
	if o.Timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

func parseDBFlags(name, what string, args []string) (dbOptions, error) {
	fs := newFlagSet(name)
	var opts dbOptions
	opts.register(fs, what)
	if err := fs.Parse(args); err != nil {
		return dbOptions{}, err
	}
	return opts, opts.validate()
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBFlags("migrate", "migrations", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBFlags("db-seed", "seeding", args)
	if err != nil {
		return err
	}

	if guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed demo accounts and books on the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}

		cmdCtx.Logger.Info("seeding demo data")
		if seedErr := bootstrap.SeedDemoData(ctx, bootstrap.Infrastructure{DB: db}, cmdCtx.Config.Auth.BcryptCost, cmdCtx.Logger); seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}

		cmdCtx.Logger.Info("database seeding completed successfully")
		return nil
	})
}

func runListAccounts(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("list-accounts")
	var out outputOptions
	out.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		ids, err := data.NewAccountRepo(db).List(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmdCtx.Out, ids, out.Query)
	})
}

type setActiveOptions struct {
	Email  string
	Active bool
}

func parseSetActiveFlags(args []string) (setActiveOptions, error) {
	fs := newFlagSet("set-account-active")
	var opts setActiveOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (case-insensitive)")
	fs.BoolVar(&opts.Active, "active", true, "Whether the account may sign in")
	if err := fs.Parse(args); err != nil {
		return setActiveOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return setActiveOptions{}, fmt.Errorf("%w: --email", errMissingFlag)
	}
	return opts, nil
}

func runSetAccountActive(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetActiveFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		if err := data.NewAccountRepo(db).SetActive(ctx, opts.Email, opts.Active); err != nil {
			return err
		}
		return writef(cmdCtx.Out, "account %s active=%t\n", opts.Email, opts.Active)
	})
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.OpenPostgres(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) error {
	host := cmdCtx.Config.Postgres.Host
	if !isLikelyRemoteHost(host) {
		return nil
	}
	if !allow {
		return fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	return requireRemoteHostConfirmation(action, host)
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	if h == "localhost" || h == "127.0.0.1" || h == "::1" {
		return false
	}
	if strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

func requireRemoteHostConfirmation(action, host string) error {
	if err := writef(
		os.Stderr,
		"\nWARNING: database host %q does not look like a local address.\n"+
			"This operation will %s.\n",
		host,
		action,
	); err != nil {
		return fmt.Errorf("print remote host warning: %w", err)
	}
	if err := writef(os.Stderr, "Type %q to continue or press enter to abort: ", host); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	resp, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil || strings.TrimSpace(resp) != host {
		if writeErr := writeln(os.Stderr, "\nRemote safeguard check failed; aborting."); writeErr != nil {
			return fmt.Errorf("print remote safeguard failure: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	return nil
}
