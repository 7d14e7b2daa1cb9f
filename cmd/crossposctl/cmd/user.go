package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/internal/auth"
	"github.com/openlore/crosspost/mongodb"
)

var (
	userEmail    string
	userPassword string
	userName     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)

		users, err := mongodb.NewUserRepository(ctx, db)
		if err != nil {
			return err
		}

		hash, err := auth.NewBcryptPasswordHasher(0).Hash(userPassword)
		if err != nil {
			return err
		}
		user := &domain.User{
			ID:           uuid.NewString(),
			Email:        userEmail,
			DisplayName:  userName,
			PasswordHash: hash,
		}
		if err := users.CreateUser(ctx, user); err != nil {
			return err
		}
		fmt.Printf("created user %s (%s)\n", user.ID, user.Email)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "account email (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "account password (required)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}
