package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/passman"
)

func newUpdateCommand(a *app) *cobra.Command {
	opts := &entryOptions{}

	cmd := &cobra.Command{
		Use:   "update <service>",
		Short: "Replace the credential of a service",
		Long: `Replace the username and password stored for a service. The service name
is matched case-insensitively and keeps its stored spelling.

An empty username keeps the current one. An empty password, or --generate,
stores a random one. The link is kept unless --link is given.

Example:
  passman update github
  passman update github --username bob --generate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "New username")
	cmd.Flags().StringVar(&opts.link, "link", "", "New service URL")
	cmd.Flags().BoolVarP(&opts.generate, "generate", "g", false, "Generate a random password")
	cmd.Flags().IntVar(&opts.length, "length", 0, "Generated password length (default from config)")
	cmd.Flags().BoolVar(&opts.show, "show", false, "Print the generated password")
	return cmd
}

func runUpdate(cmd *cobra.Command, a *app, service string, opts *entryOptions) error {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	entry, err := m.GetEntry(service)
	if err != nil {
		return err
	}

	username := opts.username
	if !cmd.Flags().Changed("username") {
		if username, err = a.prompter.Input(fmt.Sprintf("Username (leave empty to keep '%s'): ", entry.Username)); err != nil {
			return err
		}
	}
	if username == "" {
		username = entry.Username
	}

	link := entry.ServiceLink
	if cmd.Flags().Changed("link") {
		link = opts.link
	}

	password, generated, err := a.entryPassword(m, opts, "New password (leave empty to generate): ")
	if err != nil {
		return err
	}

	if err := m.UpdateEntry(entry.Service, username, password, passman.WithServiceLink(link)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeOutput(out, "✓ Updated entry '%s'\n", entry.Service); err != nil {
		return err
	}
	return reportGenerated(out, entry.Service, password, generated, opts.show)
}
