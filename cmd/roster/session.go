package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/kitchen-roster/internal/identity"
)

var loginCmd = &cobra.Command{
	Use:   "login <user-id or email>",
	Short: "Remember who is using this terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in user",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and their roles",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := identity.NewProvider(openVault(), st).Login(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", u.Label(), u.ID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := identity.NewProvider(openVault(), nil).Logout(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	viewer, err := identity.NewProvider(openVault(), st).Current(context.Background())
	if errors.Is(err, identity.ErrNoSession) {
		fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
		return nil
	}
	if err != nil {
		return err
	}

	roles := viewer.Roles.IDs()
	if len(roles) == 0 {
		roles = []string{"none"}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\nroles: %s\n", viewer.UserID, strings.Join(roles, ", "))
	return nil
}
