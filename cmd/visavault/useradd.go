package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stuverse/visavault/internal/app"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a user account",
	Long:    `Creates an account directly, bypassing the HTTP registration endpoint. Useful for seeding a deployment.`,
	Example: `  visavault user add --email student@college.edu --name "Ada Lovelace"`,
	RunE:    runUserAdd,
}

var (
	userAddEmail string
	userAddName  string
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().StringVarP(&userAddEmail, "email", "e", "",
		"University email address (required)")
	userAddCmd.Flags().StringVarP(&userAddName, "name", "n", "",
		"Display name")

	_ = userAddCmd.MarkFlagRequired("email")
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	password, err := promptPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	user, err := application.Auth.Register(userAddEmail, userAddName, password)
	if err != nil {
		printError("Could not create user: %v", err)
		return err
	}

	printSuccess("Created user %s (%s)", user.Email, user.ID)
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}
	return string(password), nil
}
