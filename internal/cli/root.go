// Package cli implements the helpdeskctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk/internal/dispatch"
)

// Backend opens the operations the commands run against.
type Backend struct {
	// Open returns the handlers plus a func releasing their resources.
	Open    func(ctx context.Context, dsn string) (dispatch.Handlers, func(), error)
	// Migrate returns how many migration files were executed.
	Migrate func(ctx context.Context, dsn string) (int, error)
}

type options struct {
	dsn     string
	output  string
	backend Backend
}

// NewRootCommand builds helpdeskctl.
func NewRootCommand(backend Backend) *cobra.Command {
	opts := &options{backend: backend}

	root := &cobra.Command{
		Use:   "helpdeskctl",
		Short: "Manage helpdesk tickets and comments",
		Long: `helpdeskctl talks to the helpdesk database directly.

It runs the same ticket and comment operations as the HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output %q (want json or yaml)", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection string (defaults to $POSTGRES_DSN)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")

	root.AddCommand(newTicketCommand(opts))
	root.AddCommand(newCommentCommand(opts))
	root.AddCommand(newMigrateCommand(opts))
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(backend Backend) {
	if err := NewRootCommand(backend).Execute(); err != nil {
		os.Exit(1)
	}
}

// withHandlers opens the backend for the duration of fn.
func (o *options) withHandlers(cmd *cobra.Command, fn func(ctx context.Context, ops dispatch.Handlers) error) error {
	if o.dsn == "" {
		return fmt.Errorf("no database configured: pass --dsn or set POSTGRES_DSN")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ops, closeFn, err := o.backend.Open(ctx, o.dsn)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer closeFn()
	return fn(ctx, ops)
}

func (o *options) print(w io.Writer, v any) error {
	if o.output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseIDArg(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

type idResult struct {
	ID int64 `json:"id" yaml:"id"`
}
