package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlore/crosspost/mongodb"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Inspect crossposted posts",
}

var postStatusCmd = &cobra.Command{
	Use:   "status <postID>",
	Short: "Report a post's role in its crosspost pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)

		posts := mongodb.NewPostRepository(db)
		post, err := posts.GetPostByID(ctx, args[0])
		if err != nil {
			return err
		}

		switch {
		case post.IsOrigin():
			fmt.Println("role: origin")
			if post.Crosspost.ForeignPostID != "" {
				fmt.Printf("mirror: %s\n", post.Crosspost.ForeignPostID)
			} else {
				fmt.Println("mirror: none (draft, or crosspost not yet performed)")
			}
		case post.IsMirror():
			fmt.Println("role: mirror")
			fmt.Printf("origin: %s\n", post.Crosspost.ForeignPostID)
		default:
			fmt.Println("role: local post, no crosspost")
		}
		fmt.Printf("title: %q\ndraft: %v\ndeletedDraft: %v\n", post.Title, post.Draft, post.DeletedDraft)
		return nil
	},
}

func init() {
	postCmd.AddCommand(postStatusCmd)
	rootCmd.AddCommand(postCmd)
}
