package cli

import (
	"context"
	"fmt"

	"notes-sync-server/internal/domain"

	"github.com/spf13/cobra"
)

// Backend is the set of note operations notesctl drives.
type Backend interface {
	Import(ctx context.Context) (*domain.ImportReport, error)
	Status(ctx context.Context) (*domain.SyncStatus, error)
	Notes(ctx context.Context) ([]domain.Note, error)
	Rename(ctx context.Context, identifier, title string) (domain.Note, error)
	Delete(ctx context.Context, identifier string) error
}

// Connector opens a Backend. The returned func releases it.
type Connector func(ctx context.Context) (Backend, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"

	connect Connector
}

var ValidFormats = []string{"text", "json", "yaml"}

func NewRootCommand(connect Connector) *cobra.Command {
	opts := &RootOptions{connect: connect}

	cmd := &cobra.Command{
		Use:   "notesctl",
		Short: "Operate the notes sync server",
		Long:  "Inspect and edit the notes collection and run the one-time import from the notes API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withBackend connects, runs fn and releases the backend.
func withBackend(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, b Backend, out *OutputFormatter) error) error {
	out := newFormatter(opts, cmd)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend, release, err := opts.connect(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect", err)
	}
	if release != nil {
		defer release()
	}

	return fn(ctx, backend, out)
}
