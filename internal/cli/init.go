package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/crypto"
	"github.com/secureshell/passman/internal/util"
)

func newInitCommand(a *app) *cobra.Command {
	var weak bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set the master password",
		Long: `Set the master password that unlocks the vault.

The password must be at least 8 characters and contain a letter, a digit and
a symbol, unless --weak is given or security.require_strong_master is off.
An existing master password is never replaced; use 'passman passwd' instead.

Example:
  passman init
  PASSMAN_MASTER='...' passman init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a, weak)
		},
	}

	cmd.Flags().BoolVar(&weak, "weak", false, "Skip the master password strength check")
	return cmd
}

func runInit(cmd *cobra.Command, a *app, weak bool) error {
	m, err := a.openVault()
	if err != nil {
		return err
	}
	if m.HasMasterPassword() {
		return util.InvalidInput("master password already set in %s, use 'passman passwd' to change it", a.cfg.DataDir)
	}

	pw, err := a.newPassword("Master password: ", envMaster)
	if err != nil {
		return err
	}
	if err := a.checkStrength(pw, weak); err != nil {
		return err
	}

	if err := m.Initialize(pw); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := writeOutput(out, "✓ Master password set for %s\n", a.cfg.DataDir); err != nil {
		return err
	}
	if n := m.EntryCount(); n > 0 {
		return writeOutput(out, "  %d existing entries loaded\n", n)
	}
	return nil
}

func (a *app) checkStrength(pw string, weak bool) error {
	if weak || !a.cfg.Security.RequireStrongMaster {
		return nil
	}
	if err := crypto.ValidateStrength(pw); err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidInput, err)
	}
	return nil
}
