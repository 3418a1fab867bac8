package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ljosc/discuss/internal/credstore"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored credentials of the profile",
		Long: `Clear the stored credentials of the profile. A running server notices
on its next session poll and returns to the login page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openProfile(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "credentials cleared")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print whether the profile holds a login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openProfile(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			present, err := credstore.HasRefreshToken(store)
			if err != nil {
				return err
			}
			state := "logged_out"
			if present {
				state = "logged_in"
			}
			fmt.Fprintln(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func openProfile(cmd *cobra.Command) (*credstore.SQLite, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return credstore.OpenProfile(cfg.ProfileDir)
}
