package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/crypto"
	"github.com/secureshell/passman/internal/util"
)

type passgenOptions struct {
	length  int
	charset string
	copy    bool
	ttl     int
}

func newPassgenCommand(a *app) *cobra.Command {
	opts := &passgenOptions{
		length:  crypto.DefaultUtilityLength,
		charset: string(crypto.CharsetUtility),
		ttl:     -1,
	}

	cmd := &cobra.Command{
		Use:   "passgen",
		Short: "Generate a random password",
		Long: fmt.Sprintf(`Generate a random password without touching the vault.

The length is kept between %d and %d characters.

Example:
  passman passgen
  passman passgen --length 32 --charset alnum
  passman passgen --copy`, crypto.MinUtilityLength, crypto.MaxUtilityLength),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassgen(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.length, "length", opts.length, "Length of generated password (characters)")
	cmd.Flags().StringVar(&opts.charset, "charset", opts.charset, "Character set ("+charsetNames()+")")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the generated value to the clipboard")
	cmd.Flags().IntVar(&opts.ttl, "ttl", opts.ttl, "Clipboard clear timeout in seconds (-1 to use config default)")
	return cmd
}

func runPassgen(cmd *cobra.Command, a *app, opts *passgenOptions) error {
	charset, err := crypto.ParseCharset(opts.charset)
	if err != nil {
		return util.InvalidInput("invalid charset: %s (valid: %s)", opts.charset, charsetNames())
	}

	length := crypto.ClampLength(opts.length)
	if length != opts.length {
		a.logger.Warn("password length out of range, adjusted", "requested", opts.length, "length", length)
	}

	password, err := crypto.GeneratePassword(length, charset)
	if err != nil {
		return util.WrapError(err, "failed to generate password")
	}

	out := cmd.OutOrStdout()
	if !opts.copy {
		return writeOutput(out, "%s\n", password)
	}
	return copyPassword(out, a, password, opts.ttl)
}

func charsetNames() string {
	names := make([]string, 0, len(crypto.Charsets()))
	for _, cs := range crypto.Charsets() {
		names = append(names, string(cs))
	}
	return strings.Join(names, "|")
}
