package cli

import (
	"github.com/spf13/cobra"
)

type listedEntry struct {
	Service     string `json:"service"`
	Username    string `json:"username"`
	ServiceLink string `json:"service_link,omitempty"`
}

func newListCommand(a *app) *cobra.Command {
	var (
		asJSON bool
		long   bool
		search string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored services",
		Long: `List the services stored in the vault, one per line.

The --search flag keeps entries whose service, username or link contains
every token, using '+' as an AND separator (e.g. 'aws+prod').

Example:
  passman list
  passman list --long
  passman list --search git
  passman list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, search, asJSON, long)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show usernames and links")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search in service, username and link")
	return cmd
}

func runList(cmd *cobra.Command, a *app, search string, asJSON, long bool) error {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	services := m.Search(search)

	if asJSON {
		listed := make([]listedEntry, 0, len(services))
		for _, s := range services {
			e, err := m.GetEntry(s)
			if err != nil {
				return err
			}
			listed = append(listed, listedEntry{Service: e.Service, Username: e.Username, ServiceLink: e.ServiceLink})
		}
		return writeJSON(out, listed)
	}

	if len(services) == 0 {
		if search != "" {
			return writeOutput(out, "No entries match %q\n", search)
		}
		return writeOutput(out, "No entries stored\n")
	}

	if !long {
		for _, s := range services {
			if err := writeOutput(out, "%s\n", s); err != nil {
				return err
			}
		}
		return nil
	}

	tw := newTable(out)
	_ = writeOutput(tw, "SERVICE\tUSERNAME\tLINK\n")
	for _, s := range services {
		e, err := m.GetEntry(s)
		if err != nil {
			return err
		}
		_ = writeOutput(tw, "%s\t%s\t%s\n", e.Service, e.Username, e.ServiceLink)
	}
	return tw.Flush()
}
