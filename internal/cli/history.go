package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/domain"
	"github.com/secureshell/passman/internal/store"
	"github.com/secureshell/passman/internal/util"
)

func newHistoryCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous versions of the vault",
		Long: `List the vault versions kept in the journal. A version is recorded each
time the vault file is replaced; history_limit bounds how many are kept.

Example:
  passman history
  passman restore 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, a, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func runHistory(cmd *cobra.Command, a *app, asJSON bool) error {
	if _, _, err := a.unlock(); err != nil {
		return err
	}
	j, err := a.requireJournal()
	if err != nil {
		return err
	}

	snaps, err := j.Snapshots()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if snaps == nil {
			snaps = []domain.Snapshot{}
		}
		return writeJSON(out, snaps)
	}
	if len(snaps) == 0 {
		return writeOutput(out, "No previous versions recorded\n")
	}

	tw := newTable(out)
	_ = writeOutput(tw, "SEQ\tTAKEN\tREASON\tSIZE\tDIGEST\n")
	for i := len(snaps) - 1; i >= 0; i-- {
		s := snaps[i]
		_ = writeOutput(tw, "%d\t%s\t%s\t%d\t%s\n", s.Seq, s.TakenAt.Local().Format(time.DateTime), s.Reason, s.Size, shortDigest(s.Digest))
	}
	return tw.Flush()
}

func newRestoreCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <seq>",
		Short: "Restore a previous version of the vault",
		Long: `Replace the vault with a version listed by 'passman history'.
The version must have been written under the current master password.
The vault being replaced is itself kept in the history.

Example:
  passman restore 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return util.InvalidInput("invalid version %q", args[0])
			}
			return runRestore(cmd, a, seq, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runRestore(cmd *cobra.Command, a *app, seq uint64, yes bool) (err error) {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}
	if _, err := a.requireJournal(); err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Replace the vault (%d entries) with version %d?", m.EntryCount(), seq), yes)
	if err != nil {
		return err
	}
	if !ok {
		return writeOutput(cmd.OutOrStdout(), "Cancelled\n")
	}

	defer func() { a.audit(domain.OpRestore, "", fmt.Sprintf("version %d", seq), err) }()

	if err := a.store.RestoreSnapshot(seq, m.MasterCredential().Hash); err != nil {
		return fmt.Errorf("failed to restore version %d: %w", seq, err)
	}
	if err := m.Load(); err != nil {
		return fmt.Errorf("failed to reload vault: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), "✓ Restored version %d (%d entries)\n", seq, m.EntryCount())
}

func (a *app) requireJournal() (*store.Journal, error) {
	if j := a.openStore().Journal(); j != nil {
		return j, nil
	}
	return nil, fmt.Errorf("history unavailable: %w", store.ErrJournalClosed)
}

// audit records an operation the manager does not see itself
func (a *app) audit(opType, service, detail string, err error) {
	if a.journal == nil {
		return
	}
	op := &domain.Operation{Type: opType, Service: service, Success: err == nil, Detail: detail}
	if err != nil {
		op.Detail = err.Error()
	}
	if logErr := a.journal.LogOperation(op); logErr != nil {
		a.logger.Warn("failed to write audit record", "operation", opType, "error", logErr)
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
