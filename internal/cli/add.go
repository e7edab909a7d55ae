package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/passman"
	"github.com/secureshell/passman/internal/util"
)

type entryOptions struct {
	username string
	link     string
	generate bool
	length   int
	show     bool
	force    bool
}

func newAddCommand(a *app) *cobra.Command {
	opts := &entryOptions{}

	cmd := &cobra.Command{
		Use:   "add <service>",
		Short: "Add a credential to the vault",
		Long: `Add a credential for a service.

You are prompted for the username and password unless given as flags.
Leave the password empty, or pass --generate, to store a random one.

Example:
  passman add github --username alice
  passman add mail --generate --length 24 --show
  passman add bank --link https://bank.example`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "Username for the service")
	cmd.Flags().StringVar(&opts.link, "link", "", "Service URL")
	cmd.Flags().BoolVarP(&opts.generate, "generate", "g", false, "Generate a random password")
	cmd.Flags().IntVar(&opts.length, "length", 0, "Generated password length (default from config)")
	cmd.Flags().BoolVar(&opts.show, "show", false, "Print the generated password")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Replace an existing entry with the same name")
	return cmd
}

func runAdd(cmd *cobra.Command, a *app, service string, opts *entryOptions) error {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	if existing, err := m.GetEntry(service); err == nil && !opts.force {
		return util.InvalidInput("entry %q already exists, use 'passman update' or --force", existing.Service)
	}

	username := opts.username
	if !cmd.Flags().Changed("username") {
		if username, err = a.prompter.Input("Username: "); err != nil {
			return err
		}
	}

	password, generated, err := a.entryPassword(m, opts, "Password (leave empty to generate): ")
	if err != nil {
		return err
	}

	if err := m.AddEntry(service, username, password, passman.WithServiceLink(opts.link)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeOutput(out, "✓ Added entry '%s'\n", service); err != nil {
		return err
	}
	return reportGenerated(out, service, password, generated, opts.show)
}

// entryPassword prompts for a password, generating one when the answer is empty or --generate is set.
func (a *app) entryPassword(m *passman.Manager, opts *entryOptions, prompt string) (string, bool, error) {
	if !opts.generate {
		pw, err := a.prompter.Password(prompt)
		if err != nil {
			return "", false, err
		}
		if pw != "" {
			return pw, false, nil
		}
	}

	length := opts.length
	if length <= 0 {
		length = a.cfg.PasswordLength
	}
	pw, err := m.GeneratePassword(length)
	if err != nil {
		return "", false, util.WrapError(err, "failed to generate password")
	}
	return pw, true, nil
}

func reportGenerated(out io.Writer, service, password string, generated, show bool) error {
	switch {
	case !generated:
		return nil
	case show:
		return writeOutput(out, "Generated password: %s\n", password)
	default:
		return writeOutput(out, "  Generated a %d-character password, view it with 'passman get %s --show'\n", len(password), service)
	}
}
