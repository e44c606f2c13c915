package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginPassword string

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Authenticate against the claims service",
	Long: `Login sends the credentials to the backend, stores the returned
bearer token, and confirms the identity with a verification round-trip.
Success is reported only once the identity is verified.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Erase the stored credential",
	Long:  `Logout erases the stored bearer token. It always succeeds, even when no session exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		app.session.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.requireSession(cmd.Context()); err != nil {
			return err
		}

		user := app.session.CurrentUser()
		fmt.Printf("Logged in as %s", user.Username)
		if user.Email != "" {
			fmt.Printf(" (%s)", user.Email)
		}
		fmt.Println()
		if exp, ok := app.session.TokenExpiry(); ok {
			fmt.Printf("Token expires: %s\n", exp)
		}
		return nil
	},
}

var registerPassword string

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		password := registerPassword
		if password == "" {
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		if err := app.session.Register(cmd.Context(), args[0], args[1], password); err != nil {
			return err
		}
		fmt.Println("Account created. Log in with 'claimctl login'.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	ok, err := app.session.Login(cmd.Context(), args[0], password)
	if err != nil {
		if msg := app.session.Current().LastError; msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	if !ok {
		return fmt.Errorf("login did not complete")
	}

	fmt.Printf("Logged in as %s\n", app.session.CurrentUser().Username)
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
