// fixit/cli.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AB-App-Dev/FixIt/auth"
	"github.com/AB-App-Dev/FixIt/config"
	"github.com/AB-App-Dev/FixIt/database"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var cfgFile string

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixit",
		Short: "Municipal incident reporting backend",
		Long: `FixIt lets citizens report local problems such as potholes or broken
street lights, and lets administrators review and close them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./fixit.yaml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func loadSettings() (*config.Settings, error) {
	return config.Load(config.NewViper(cfgFile))
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if port != "" {
				settings.Server.Port = port
			}
			return runServer(settings, newLogger())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides server.port)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			logger := newLogger()

			if password == "" {
				password, err = promptPassword()
				if err != nil {
					return err
				}
			}

			db, err := database.InitDB(settings.Database.Driver, settings.Database.DSN, logger)
			if err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			defer db.Close()

			manager := auth.NewManager(db, nil, auth.Options{BcryptCost: config.BcryptCost}, logger)
			created, err := manager.Seed(context.Background(), strings.TrimSpace(username), password)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %q created\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %q already exists, left unchanged\n", username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "admin login (an email address)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted if empty)")
	return cmd
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fixit %s\n", config.AppVersion)
		},
	}
}
