package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPasswdCommand(a *app) *cobra.Command {
	var weak bool

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the master password",
		Long: `Change the master password and re-encrypt every entry under it.

If anything fails the previous master password stays in effect.
PASSMAN_MASTER and PASSMAN_NEW_MASTER replace the prompts.

Example:
  passman passwd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswd(cmd, a, weak)
		},
	}

	cmd.Flags().BoolVar(&weak, "weak", false, "Skip the master password strength check")
	return cmd
}

func runPasswd(cmd *cobra.Command, a *app, weak bool) error {
	m, current, err := a.unlock()
	if err != nil {
		return err
	}

	next, err := a.newPassword("New master password: ", envNewMaster)
	if err != nil {
		return err
	}
	if err := a.checkStrength(next, weak); err != nil {
		return err
	}

	if err := m.ChangeMasterPassword(current, next); err != nil {
		return fmt.Errorf("failed to change master password: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), "✓ Master password changed, %d entries re-encrypted\n", m.EntryCount())
}
