package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/domain"
)

type auditOptions struct {
	limit  int
	asJSON bool
}

func newAuditLogCommand(a *app) *cobra.Command {
	opts := &auditOptions{limit: 50}

	cmd := &cobra.Command{
		Use:   "audit-log",
		Short: "Show recorded vault operations",
		Long: `Show the operations recorded in the journal, newest last.

Example:
  passman audit-log
  passman audit-log --limit 10
  passman audit-log --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditLog(cmd, a, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", opts.limit, "Show only the last N operations (0 for all)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Output in JSON format")
	return cmd
}

func runAuditLog(cmd *cobra.Command, a *app, opts *auditOptions) error {
	if _, _, err := a.unlock(); err != nil {
		return err
	}
	j, err := a.requireJournal()
	if err != nil {
		return err
	}

	ops, err := j.AuditLog()
	if err != nil {
		return err
	}
	if opts.limit > 0 && len(ops) > opts.limit {
		ops = ops[len(ops)-opts.limit:]
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		if ops == nil {
			ops = []*domain.Operation{}
		}
		return writeJSON(out, ops)
	}
	if len(ops) == 0 {
		return writeOutput(out, "No operations recorded\n")
	}

	tw := newTable(out)
	_ = writeOutput(tw, "TIME\tOPERATION\tSERVICE\tRESULT\tDETAIL\n")
	for _, op := range ops {
		result := "ok"
		if !op.Success {
			result = "failed"
		}
		_ = writeOutput(tw, "%s\t%s\t%s\t%s\t%s\n", op.Timestamp.Local().Format(time.DateTime), op.Type, op.Service, result, op.Detail)
	}
	return tw.Flush()
}
