package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"notes-sync-server/internal/domain"

	"github.com/spf13/cobra"
)

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Run the one-time import from the notes API",
		Long: `Fetch the notes API and write every note into the collection,
unless a previous run already completed. A partial import leaves the
sync flag unset; running again imports only the missing notes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, rootOpts, runImport)
		},
	}
}

func runImport(ctx context.Context, b Backend, out *OutputFormatter) error {
	report, err := b.Import(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "import failed", err)
	}

	if report == nil {
		return out.Result(map[string]bool{"already_imported": true}, func(w io.Writer) {
			fmt.Fprintln(w, "Notes already imported")
		})
	}

	if err := out.Result(report, func(w io.Writer) {
		fmt.Fprintf(w, "requested=%d created=%d skipped=%d failed=%d\n",
			report.Requested, report.Created, report.Skipped, report.Failed)
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
	}); err != nil {
		return err
	}

	if !report.Complete() {
		return NewExitError(ExitFailure, "import incomplete")
	}
	return nil
}

func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the initial import has completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, rootOpts, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				status, err := b.Status(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to read sync flag", err)
				}
				return out.Result(status, func(w io.Writer) {
					fmt.Fprintf(w, "%s: %s\n", status.Key, status.State)
				})
			})
		},
	}
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the notes in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, rootOpts, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				notes, err := b.Notes(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to load notes", err)
				}
				out.VerboseLog("loaded %d note(s)", len(notes))
				return out.Result(notes, func(w io.Writer) {
					writeNoteTable(w, notes)
				})
			})
		},
	}
}

func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change the title of a note",
		Long:  "Change the title of a note. <id> is the document id or the note's nid.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, rootOpts, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				note, err := b.Rename(ctx, args[0], args[1])
				if err != nil {
					return noteError("rename failed", err)
				}
				return out.Result(note, func(w io.Writer) {
					fmt.Fprintf(w, "Renamed %s to %q\n", note.Identifier(), note.Title)
				})
			})
		},
	}
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, rootOpts, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				if err := b.Delete(ctx, args[0]); err != nil {
					return noteError("delete failed", err)
				}
				return out.Result(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %s\n", args[0])
				})
			})
		},
	}
}

// noteError maps rejected input to ExitCommandError.
func noteError(message string, err error) error {
	if errors.Is(err, domain.ErrEmptyTitle) || errors.Is(err, domain.ErrTitleTooLong) || errors.Is(err, domain.ErrMissingIdentifier) {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}
