package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/ticktui/ticktui/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize ticktui with your account",
	Long: `Run the OAuth authorization-code flow and cache the resulting credential.

The authorization URL is printed; after you approve access, either paste the
URL you were redirected to (callback.mode: prompt) or let ticktui catch the
redirect itself (callback.mode: listener).

Examples:
  # Sign in
  ticktui login

  # Authorize on another machine: print the URL, open it anywhere, then
  # hand back the URL you were redirected to with the printed state
  ticktui login --print-url
  ticktui login --redirect-url 'http://localhost:8080/callback?code=...&state=...' --state <state>`,
	RunE: runLogin,
}

var loginFlags struct {
	PrintURL    bool
	RedirectURL string
	State       string
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached credential",
	RunE:  runLogout,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect or print the access token",
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a cached credential exists and when it expires",
	RunE:  runTokenStatus,
}

var tokenPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print a valid access token, refreshing or signing in if needed",
	RunE:  runTokenPrint,
}

func init() {
	loginCmd.Flags().BoolVar(&loginFlags.PrintURL, "print-url", false, "Print the authorization URL and its state, then exit")
	loginCmd.Flags().StringVar(&loginFlags.RedirectURL, "redirect-url", "", "Finish a --print-url authorization with the URL you were redirected to")
	loginCmd.Flags().StringVar(&loginFlags.State, "state", "", "State printed by --print-url")
	loginCmd.MarkFlagsMutuallyExclusive("print-url", "redirect-url")

	tokenCmd.AddCommand(tokenStatusCmd, tokenPrintCmd)
	RootCmd.AddCommand(loginCmd, logoutCmd, tokenCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if loginFlags.PrintURL {
			state := strings.ReplaceAll(uuid.NewString(), "-", "")
			authURL := a.engine.AuthURL(state)
			if globalFlags.JSON {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"auth_url": authURL, "state": state})
			}
			fmt.Fprintln(cmd.OutOrStdout(), authURL)
			fmt.Fprintf(cmd.ErrOrStderr(), "Then run: ticktui login --redirect-url '<redirected URL>' --state %s\n", state)
			return nil
		}

		var cred *models.Credential
		var err error
		if loginFlags.RedirectURL != "" {
			cred, err = a.engine.CompleteRedirect(ctx, loginFlags.RedirectURL, loginFlags.State)
		} else {
			cred, err = a.engine.Login(ctx)
		}
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if globalFlags.JSON {
			return outputJSON(cmd.OutOrStdout(), a.engine.Status(ctx))
		}
		expires := "unknown"
		if at, ok := cred.ExpiresAt(); ok {
			expires = at.Local().Format(time.RFC1123)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Access token valid until %s.\n", expires)
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.engine.Logout(ctx); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cached credential removed.")
		return nil
	})
}

func runTokenStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		status := a.engine.Status(ctx)
		if globalFlags.JSON {
			return outputJSON(cmd.OutOrStdout(), status)
		}

		w := cmd.OutOrStdout()
		switch {
		case !status.Present:
			fmt.Fprintln(w, "No cached credential. Run 'ticktui login'.")
		case status.Valid:
			fmt.Fprintf(w, "Valid until %s (in %s).\n",
				status.ExpiresAt.Local().Format(time.RFC1123),
				time.Until(status.ExpiresAt).Round(time.Second))
		case status.HasRefreshToken:
			fmt.Fprintln(w, "Expired; it will be refreshed on the next request.")
		default:
			fmt.Fprintln(w, "Expired and not refreshable. Run 'ticktui login'.")
		}
		return nil
	})
}

func runTokenPrint(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		token, err := a.engine.GetAccessToken(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	})
}
