package cli

import (
	"io"

	"github.com/spf13/cobra"
)

type getOptions struct {
	show bool
	copy bool
	ttl  int
}

func newGetCommand(a *app) *cobra.Command {
	opts := &getOptions{ttl: -1}

	cmd := &cobra.Command{
		Use:   "get <service>",
		Short: "Show a credential",
		Long: `Show the username and link stored for a service. The service name is
matched case-insensitively.

The password is hidden unless --show is given. With --copy it is placed on
the clipboard and cleared after clipboard_ttl (or --ttl seconds).

Example:
  passman get github
  passman get GitHub --show
  passman get github --copy --ttl 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.show, "show", false, "Print the password (security warning)")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the password to the clipboard")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")
	return cmd
}

func runGet(cmd *cobra.Command, a *app, service string, opts *getOptions) error {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	entry, err := m.GetEntry(service)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := newTable(out)
	_ = writeOutput(tw, "Service:\t%s\n", entry.Service)
	_ = writeOutput(tw, "Username:\t%s\n", entry.Username)
	if entry.ServiceLink != "" {
		_ = writeOutput(tw, "Link:\t%s\n", entry.ServiceLink)
	}

	if !opts.show && !opts.copy {
		_ = writeOutput(tw, "Password:\t********\n")
		return tw.Flush()
	}

	password, err := m.GetPassword(entry.Service)
	if err != nil {
		return err
	}
	if opts.show {
		_ = writeOutput(tw, "Password:\t%s\n", password)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.copy {
		return copyPassword(out, a, password, opts.ttl)
	}
	return nil
}

func copyPassword(out io.Writer, a *app, password string, ttlOverride int) error {
	ttl, err := resolveClipboardTTL(ttlOverride, a.cfg)
	if err != nil {
		return err
	}
	return copySecret(out, password, ttl)
}
