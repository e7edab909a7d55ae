package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the vault lives and what it holds",
		Long: `Show the data directory, whether a master password is set, the number of
entries and the state of the journal. No password is needed.

Example:
  passman status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, a)
		},
	}
	return cmd
}

func runStatus(cmd *cobra.Command, a *app) error {
	s := a.openStore()
	tw := newTable(cmd.OutOrStdout())

	_ = writeOutput(tw, "Data directory:\t%s\n", s.Dir())

	cred, ok, err := s.LoadMaster()
	switch {
	case err != nil:
		_ = writeOutput(tw, "Master password:\tunreadable (%v)\n", err)
	case ok:
		_ = writeOutput(tw, "Master password:\tset\n")
	default:
		_ = writeOutput(tw, "Master password:\tnot set (run 'passman init')\n")
	}

	if info, err := os.Stat(s.VaultPath()); err == nil {
		_ = writeOutput(tw, "Vault file:\t%s (%d bytes)\n", s.VaultPath(), info.Size())
	} else {
		_ = writeOutput(tw, "Vault file:\t%s (missing)\n", s.VaultPath())
	}

	if ok {
		if entries, err := s.LoadEntries(cred.Hash); err != nil {
			_ = writeOutput(tw, "Entries:\tunreadable (%v)\n", err)
		} else {
			_ = writeOutput(tw, "Entries:\t%d\n", len(entries))
		}
	}

	if j := s.Journal(); j != nil {
		snaps, err := j.Snapshots()
		if err != nil {
			_ = writeOutput(tw, "Journal:\t%s (unreadable: %v)\n", j.Path(), err)
		} else {
			_ = writeOutput(tw, "Journal:\t%s (%d versions kept)\n", j.Path(), len(snaps))
		}
	} else {
		_ = writeOutput(tw, "Journal:\tunavailable\n")
	}

	clip := "unavailable"
	if clipboardIsAvailable() {
		clip = "available"
	}
	_ = writeOutput(tw, "Clipboard:\t%s\n", clip)

	return tw.Flush()
}
