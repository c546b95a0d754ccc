package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rawinput/inputhub/internal/autostart"
)

// newAutostartCmd exposes the same autostart toggle cmd/tray's menu offers,
// as a scriptable CLI entry point for headless/systemd setups.
func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage whether inputhubd starts automatically on login",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Register inputhubd to start on login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := autostart.Enable(); err != nil {
				return fmt.Errorf("enable autostart: %w", err)
			}
			fmt.Println("autostart enabled")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Remove inputhubd from login startup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := autostart.Disable(); err != nil {
				return fmt.Errorf("disable autostart: %w", err)
			}
			fmt.Println("autostart disabled")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether autostart is enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(autostart.IsEnabled())
			return nil
		},
	})
	return cmd
}
