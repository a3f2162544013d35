/*
Package main is trailctl, a command-line client for a TrailMeet server.

It signs in (demo session or email and password), keeps the session token in
the user config directory, and drives events, chat and place lookup through
the client SDK.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"trailmeet/internal/client"
	"trailmeet/internal/pkg/logx"
)

const (
	defaultServer = "http://localhost:8080"
	tokenFileName = "token"
)

type cli struct {
	server  string
	token   string
	verbose bool

	state *client.State
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "trailctl",
		Short:         "Command-line client for TrailMeet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.InitCLILogger(cmd.ErrOrStderr(), c.verbose)

			token := c.token
			if token == "" {
				token = readToken()
			}

			notifier := client.NotifierFunc(func(n client.Notice) {
				if n.Level == client.NoticeWarning {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", n.Message)
				}
			})
			c.state = client.NewState(client.New(c.server, client.WithToken(token)), client.WithNotifier(notifier))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.server, "server", envOr("TRAILMEET_SERVER", defaultServer), "TrailMeet server URL")
	root.PersistentFlags().StringVar(&c.token, "token", os.Getenv("TRAILMEET_TOKEN"), "session token (defaults to the saved one)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.eventsCmd(),
		c.chatCmd(),
		c.placesCmd(),
		c.resolveCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trailmeet", tokenFileName), nil
}

func readToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// signedIn restores the user of the saved token, or fails with a hint.
func (c *cli) signedIn(ctx context.Context) error {
	if err := c.state.Resume(ctx); err != nil {
		if errors.Is(err, client.ErrNotSignedIn) || client.IsUnauthorized(err) {
			return errors.New("not signed in, run `trailctl login` first")
		}
		return err
	}
	return nil
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a demo session or with --email and --password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.state.API().SetToken("")

			var err error
			if email != "" {
				err = c.state.SignIn(ctx, email, password)
			} else {
				err = c.state.SignInDemo(ctx)
			}
			if err != nil {
				return err
			}

			if err := saveToken(c.state.API().Token()); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			u, _ := c.state.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", u.Name, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", envOr("TRAILMEET_PASSWORD", ""), "account password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.state.SignOut(cmd.Context())
			if saveErr := saveToken(""); saveErr != nil {
				return saveErr
			}
			if err != nil && !client.IsUnauthorized(err) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.signedIn(cmd.Context()); err != nil {
				return err
			}
			u, _ := c.state.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", u.Name, u.Email, u.ID)
			return nil
		},
	}
}
