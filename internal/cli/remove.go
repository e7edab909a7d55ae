package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <service>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a credential from the vault",
		Long: `Remove the credential stored for a service. The service name is matched
case-insensitively. The previous vault stays in the history.

Example:
  passman remove github
  passman rm GitHub --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, a, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func runRemove(cmd *cobra.Command, a *app, service string, yes bool) error {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	entry, err := m.GetEntry(service)
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Remove entry '%s'?", entry.Service), yes)
	if err != nil {
		return err
	}
	if !ok {
		return writeOutput(cmd.OutOrStdout(), "Cancelled\n")
	}

	if err := m.RemoveEntry(entry.Service); err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), "✓ Removed entry '%s'\n", entry.Service)
}
