package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/session"
)

var (
	loginUsername    string
	registerUsername string
	registerEmail    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Exchanges your username and password for a bearer token and stores it,
with your user record, in the session file used by the other commands.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Clear(cmd.Context(), session.NewFileStore(sessionFile)); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Verify the stored session and print the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTerminal(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(describeUser(t.ctrl.User()))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (prompted when empty)")
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "username (prompted when empty)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address (prompted when empty)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	username, err := promptValue("Username", loginUsername, false)
	if err != nil {
		return err
	}
	password, err := promptValue("Password", "", true)
	if err != nil {
		return err
	}

	resp, err := newClient(cfg, "").Login(cmd.Context(), api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return authFailure(err, "Login failed")
	}
	return storeSession(cmd, resp)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	username, err := promptValue("Username", registerUsername, false)
	if err != nil {
		return err
	}
	email, err := promptValue("Email", registerEmail, false)
	if err != nil {
		return err
	}
	password, err := promptValue("Password", "", true)
	if err != nil {
		return err
	}
	confirm, err := promptValue("Confirm password", "", true)
	if err != nil {
		return err
	}

	resp, err := newClient(cfg, "").Register(cmd.Context(), api.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return authFailure(err, "Registration failed")
	}
	return storeSession(cmd, resp)
}

func storeSession(cmd *cobra.Command, resp *api.AuthResponse) error {
	sess := &session.Session{Token: resp.Token, User: resp.User}
	if err := session.Save(cmd.Context(), session.NewFileStore(sessionFile), sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Printf("Logged in as %s\n", describeUser(resp.User))
	return nil
}

// promptValue returns preset when set, otherwise asks for a non-empty value.
func promptValue(label, preset string, secret bool) (string, error) {
	if preset != "" {
		return preset, nil
	}
	p := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("required")
			}
			return nil
		},
	}
	if secret {
		p.Mask = '*'
	}
	value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return value, nil
}

// authFailure prefers the message the auth service sent.
func authFailure(err error, fallback string) error {
	if msg := api.ServerMessage(err); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %w", fallback, err)
}

func describeUser(u *api.User) string {
	if u == nil {
		return "unknown user"
	}
	if u.Email != "" {
		return fmt.Sprintf("%s <%s>", u.Username, u.Email)
	}
	return u.Username
}
