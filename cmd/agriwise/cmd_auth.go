package main

import (
	"bufio"
	"fmt"
	"strings"

	"agriwise-client/internal/api"

	"github.com/spf13/cobra"
)

func newLoginCmd(rt *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Exchanges username and password for an API token and stores it for the
current profile. The password is read from stdin when --password is omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			return rt.login(cmd, username, password)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) login(cmd *cobra.Command, username, password string) error {
	cred, err := a.client.Login(cmd.Context(), username, password)
	if err != nil {
		return a.report(api.OpLogin, err)
	}
	if err := a.session.Login(cmd.Context(), cred); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (profile %s)\n", cred.Username, a.session.Profile())
	return nil
}

func newLogoutCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := rt.session.Credential(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (profile %s)\n", rt.session.Username(), rt.session.Profile())
			return nil
		},
	}
}
