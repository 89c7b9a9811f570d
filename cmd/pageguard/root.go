package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pageguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageguard",
		Short: "Password strength advisor and page security score",
		Long: `pageguard watches web pages for password fields and gives live strength
feedback while you type. Every page it loads is also recorded as a security
snapshot (protocol, cookies, scripts), which the panel command turns into a
0-100 security score.

Snapshots are kept in the XDG data directory so that the panel can read
what a watch session recorded.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .pageguard in current or home directory)")
	cmd.PersistentFlags().String("store-dir", "",
		"Directory of the snapshot store (default: XDG data directory)")
	cmd.PersistentFlags().Bool("memory", false,
		"Keep snapshots in memory only")

	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewPanelCmd())
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewStrengthCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
