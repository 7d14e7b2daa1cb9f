package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openlore/crosspost/client"
	"github.com/openlore/crosspost/domain"
)

// Crossposter orchestrates the initiating side of the protocol: the
// account-linking mutations exposed to the forum's GraphQL layer and the
// origin-side post pipeline that creates and refreshes mirrors.
type Crossposter struct {
	users  domain.UserRepository
	posts  domain.PostRepository
	tokens *TokenService
	remote *client.CrossSiteClient
}

// NewCrossposter creates a Crossposter.
func NewCrossposter(
	users domain.UserRepository,
	posts domain.PostRepository,
	tokens *TokenService,
	remote *client.CrossSiteClient,
) *Crossposter {
	return &Crossposter{users: users, posts: posts, tokens: tokens, remote: remote}
}

// ConnectCrossposter completes the initiating side of the account-link
// handshake: it presents the foreign-minted token to the remote connect
// endpoint, then records the returned foreign user id as this user's link.
// The two writes are independent and not atomic; a crash between them leaves
// a recoverable half-linked state, and re-running is safe because the link
// write is idempotent.
func (c *Crossposter) ConnectCrossposter(ctx context.Context, localUserID, token string) error {
	resp, err := c.remote.ConnectCrossposter(ctx, token, localUserID)
	if err != nil {
		return err
	}
	if resp == nil {
		// Development fallback skipped the call; nothing to record locally.
		log.Warn().Str("user_id", localUserID).Msg("Connect skipped, remote site unreachable")
		return nil
	}
	if err := c.users.SetCrosspostUserID(ctx, localUserID, resp.ForeignUserID); err != nil {
		return fmt.Errorf("failed to store crosspost link: %w", err)
	}
	return nil
}

// UnlinkCrossposter clears the link on both sides, remote first. A user with
// no link recorded is a no-op.
func (c *Crossposter) UnlinkCrossposter(ctx context.Context, localUserID string) error {
	user, err := c.users.GetUserByID(ctx, localUserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", localUserID, err)
	}
	if !user.IsLinked() {
		return nil
	}

	token, err := c.tokens.Sign(UnlinkCrossposterPayload{UserID: *user.CrosspostUserID})
	if err != nil {
		return err
	}
	if err := c.remote.UnlinkCrossposter(ctx, token); err != nil {
		return err
	}
	if err := c.users.ClearCrosspostUserID(ctx, localUserID); err != nil {
		return fmt.Errorf("failed to clear crosspost link: %w", err)
	}
	return nil
}

// PerformCrosspost creates the mirror for an origin post that requested
// crossposting and does not have one yet. Draft posts are skipped; the
// mirror is created on first publish. The post struct is mutated with the
// returned mirror id and the stored record, if any, is updated.
func (c *Crossposter) PerformCrosspost(ctx context.Context, post *domain.Post) error {
	if post.UserID == "" || post.Draft || !post.IsOrigin() {
		return nil
	}
	mirror := post.Crosspost
	if mirror.ForeignPostID != "" {
		return nil
	}

	user, err := c.users.GetUserByID(ctx, post.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", post.UserID, err)
	}
	if !user.IsLinked() {
		return fmt.Errorf("you have not connected a crossposting account yet")
	}

	token, err := c.tokens.Sign(CrosspostPayload{
		LocalUserID:               post.UserID,
		ForeignUserID:             *user.CrosspostUserID,
		DenormalizedCrosspostData: domain.ExtractDenormalizedData(post),
	})
	if err != nil {
		return err
	}

	// A post crossposted at creation time has no id yet.
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	resp, err := c.remote.CreateCrosspost(ctx, token, post.ID, post.Title)
	if err != nil {
		return err
	}
	if resp == nil {
		log.Warn().Str("post_id", post.ID).Msg("Crosspost skipped, remote site unreachable")
		return nil
	}

	mirror.ForeignPostID = resp.PostID
	if err := c.posts.SetForeignPostID(ctx, post.ID, resp.PostID); err != nil {
		return fmt.Errorf("failed to record mirror id on origin post: %w", err)
	}
	return nil
}

// UpdateCrosspost pushes the origin's current denormalized data to its
// mirror. Posts without a mirror are a no-op.
func (c *Crossposter) UpdateCrosspost(ctx context.Context, post *domain.Post) error {
	if !post.IsOrigin() || post.Crosspost.ForeignPostID == "" {
		return nil
	}
	token, err := c.tokens.Sign(UpdateCrosspostPayload{
		PostID:                    post.Crosspost.ForeignPostID,
		DenormalizedCrosspostData: domain.ExtractDenormalizedData(post),
	})
	if err != nil {
		return err
	}
	return c.remote.UpdateCrosspost(ctx, token)
}

// HandleCrosspostUpdate runs after an origin post changes: it refreshes the
// mirror's denormalized copy when any synced field changed, then re-runs
// PerformCrosspost to cover a post crossposted while still a draft and
// published just now. The post carries the post-update field values.
func (c *Crossposter) HandleCrosspostUpdate(ctx context.Context, post *domain.Post, changedFields []string) error {
	if containsDenormalizedField(changedFields) {
		if err := c.UpdateCrosspost(ctx, post); err != nil {
			return err
		}
	}
	return c.PerformCrosspost(ctx, post)
}

func containsDenormalizedField(changed []string) bool {
	synced := domain.DenormalizedFieldNames()
	for _, name := range changed {
		for _, s := range synced {
			if name == s {
				return true
			}
		}
	}
	return false
}
