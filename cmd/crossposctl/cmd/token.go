package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlore/crosspost/services"
)

var tokenUserID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint and inspect capability tokens",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a connect token for a local account",
	Long: `Mints the same short-lived connect token the /api/crosspostToken endpoint
issues, for operators walking a user through account linking manually.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := services.NewTokenService(cfg.CrosspostSigningSecret)
		token, err := tokens.Sign(services.ConnectCrossposterPayload{UserID: tokenUserID})
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect <token>",
	Short: "Verify a token and report which operation it authorizes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := services.NewTokenService(cfg.CrosspostSigningSecret)
		token := args[0]

		// Connect and unlink tokens share the {userId} shape, so the two
		// kinds cannot be told apart here; they are reported together.
		if p, err := services.VerifyToken[services.ConnectCrossposterPayload](tokens, token); err == nil {
			fmt.Printf("kind: connectCrossposter or unlinkCrossposter\nuserId: %s\n", p.UserID)
			return nil
		}
		if p, err := services.VerifyToken[services.CrosspostPayload](tokens, token); err == nil {
			fmt.Printf("kind: crosspost\nlocalUserId: %s\nforeignUserId: %s\ntitle: %q\ndraft: %v\ndeletedDraft: %v\n",
				p.LocalUserID, p.ForeignUserID, p.Title, p.Draft, p.DeletedDraft)
			return nil
		}
		if p, err := services.VerifyToken[services.UpdateCrosspostPayload](tokens, token); err == nil {
			fmt.Printf("kind: updateCrosspost\npostId: %s\ntitle: %q\ndraft: %v\ndeletedDraft: %v\n",
				p.PostID, p.Title, p.Draft, p.DeletedDraft)
			return nil
		}
		return fmt.Errorf("token is invalid, expired, or signed with a different secret")
	},
}

func init() {
	tokenMintCmd.Flags().StringVar(&tokenUserID, "user", "", "local user id (required)")
	_ = tokenMintCmd.MarkFlagRequired("user")
	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenInspectCmd)
}
