package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlore/crosspost/domain"
	"github.com/openlore/crosspost/mongodb"
)

// remoteUserID is what the other site's operator reports as the link
// recorded there (run `crossposctl link status` on both sites and feed each
// other the values). Empty means the remote record is unknown.
var remoteUserID string

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Inspect crosspost account links",
}

var linkStatusCmd = &cobra.Command{
	Use:   "status <userID>",
	Short: "Report the link state of a local account",
	Long: `Reports how far the two-sided account handshake has progressed for a
local account. Without --remote-user the remote half is unknown and only the
local record is shown; with it, the state resolves to unlinked, half-linked,
or linked. Half-linked pairs are repaired by re-running the connect flow,
which is idempotent.`,
	Args: cobra.ExactArgs(1),
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
		user, err := users.GetUserByID(ctx, args[0])
		if err != nil {
			return err
		}

		if user.IsLinked() {
			fmt.Printf("local record: linked to foreign user %s\n", *user.CrosspostUserID)
		} else {
			fmt.Println("local record: no link")
		}

		if !cmd.Flags().Changed("remote-user") {
			fmt.Println("state: unknown (pass --remote-user to resolve)")
			return nil
		}
		state := domain.ResolveLinkState(user, remoteUserID)
		fmt.Printf("state: %s\n", state)
		return nil
	},
}

func init() {
	linkStatusCmd.Flags().StringVar(&remoteUserID, "remote-user", "",
		"foreign user id the remote site has on record for this link")
	linkCmd.AddCommand(linkStatusCmd)
}
