package cli

import (
	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/passman"
	"github.com/secureshell/passman/internal/util"
)

type rotateOptions struct {
	length int
	show   bool
	copy   bool
	ttl    int
}

func newRotateCommand(a *app) *cobra.Command {
	opts := &rotateOptions{ttl: -1}

	cmd := &cobra.Command{
		Use:   "rotate <service>",
		Short: "Replace a service password with a generated one",
		Long: `Generate a new random password for a service, keeping its username and link.

Example:
  passman rotate github
  passman rotate github --length 32 --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRotate(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.length, "length", 0, "Password length (default from config)")
	cmd.Flags().BoolVar(&opts.show, "show", false, "Print the new password")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the new password to the clipboard")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")
	return cmd
}

func runRotate(cmd *cobra.Command, a *app, service string, opts *rotateOptions) error {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	entry, err := m.GetEntry(service)
	if err != nil {
		return err
	}

	length := opts.length
	if length <= 0 {
		length = a.cfg.PasswordLength
	}
	password, err := m.GeneratePassword(length)
	if err != nil {
		return util.WrapError(err, "failed to generate password")
	}

	if err := m.UpdateEntry(entry.Service, entry.Username, password, passman.WithServiceLink(entry.ServiceLink)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeOutput(out, "✓ Rotated password for '%s'\n", entry.Service); err != nil {
		return err
	}
	if opts.show {
		if err := writeOutput(out, "New password: %s\n", password); err != nil {
			return err
		}
	}
	if opts.copy {
		return copyPassword(out, a, password, opts.ttl)
	}
	return nil
}
