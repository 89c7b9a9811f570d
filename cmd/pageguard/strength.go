package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/pageguard/internal/strength"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewStrengthCmd creates the strength command.
func NewStrengthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strength [password]",
		Short: "Rate a password the way the page advisory does",
		Long: `Strength rates a password and lists up to three suggestions, exactly as
the advisory shown next to password fields during watch.

Without an argument the password is read from a hidden prompt, or from the
first line of standard input when it is not a terminal. Passing the
password as an argument leaves it in your shell history.

Examples:
  # Prompt for the password
  pageguard strength

  # Read from a pipe and print JSON
  printf '%s\n' "$CANDIDATE" | pageguard strength --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStrengthCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runStrengthCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	readReportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	w, closeReport, err := openReport(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeReport() //nolint:errcheck

	_, err = w.WriteStrength(strength.Evaluate(password))
	return err
}

// readPassword reads a password from a hidden terminal prompt when in is
// the process's terminal, and otherwise from the first line of in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
