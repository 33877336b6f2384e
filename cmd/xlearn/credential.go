package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShinnosukeUesaka/XLearn/internal/database"
	"github.com/ShinnosukeUesaka/XLearn/internal/identity"
)

func newCredentialCommand() *cobra.Command {
	credentialCommand := &cobra.Command{
		Use:   "credential",
		Short: "Manage per-owner posting credentials",
	}

	credentialCommand.AddCommand(newCredentialSetCommand())

	return credentialCommand
}

func newCredentialSetCommand() *cobra.Command {
	var cred identity.Credential
	command := &cobra.Command{
		Use:   "set <owner>",
		Short: "Store or replace the posting credential for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cred.OwnerID = args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			if err := identity.NewDBResolver(db).Upsert(cmd.Context(), cred); err != nil {
				return fmt.Errorf("resolver.Upsert() > %w", err)
			}
			fmt.Printf("Stored credential for %s (@%s)\n", cred.OwnerID, cred.Username)
			return nil
		},
	}
	command.Args = cobra.ExactArgs(1)
	command.Flags().StringVar(&cred.Username, "username", "", "account username")
	command.Flags().StringVar(&cred.AccessToken, "access-token", "", "OAuth access token used to post")
	_ = command.MarkFlagRequired("username")
	_ = command.MarkFlagRequired("access-token")
	return command
}
