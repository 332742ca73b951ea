package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/bookms/bookms-admin/config"
	"github.com/bookms/bookms-admin/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

func main() {
	logger := bootstrap.InitLogger(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed the demo accounts and catalog",
			run:         runDBSeed,
		},
		"list-accounts": {
			name:        "list-accounts",
			description: "List accounts in the Postgres directory",
			run:         runListAccounts,
		},
		"set-account-active": {
			name:        "set-account-active",
			description: "Activate or deactivate an account",
			run:         runSetAccountActive,
		},
		"list-books": {
			name:        "list-books",
			description: "Query the configured catalog with the dashboard's filter and paging",
			run:         runListBooks,
		},
		"check-access": {
			name:        "check-access",
			description: "Evaluate the route guard for a role",
			run:         runCheckAccess,
		},
		"list-clients": {
			name:        "list-clients",
			description: "List client session namespaces in Redis",
			run:         runListClients,
		},
		"clear-storage": {
			name:        "clear-storage",
			description: "Clear client session namespaces in Redis",
			run:         runClearStorage,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: bookms-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// outputOptions are shared by every command that prints JSON.
type outputOptions struct {
	Query string
}

func (o *outputOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.Query, "query", "", "JMESPath expression applied to the JSON output")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// printJSON writes v as indented JSON, projected through the query when one is set.
func printJSON(w io.Writer, v any, query string) error {
	out, err := applyQuery(v, query)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// applyQuery round-trips v through JSON so the expression sees the same field
// names the output shows.
func applyQuery(v any, query string) (any, error) {
	if query == "" {
		return v, nil
	}
	expr, err := jmespath.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	res, err := expr.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate --query: %w", err)
	}
	return res, nil
}

var errMissingFlag = errors.New("missing required flag")

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func confirm(action string) error {
	if err := writef(os.Stdout, "About to %s. Continue? [y/N]: ", action); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}
