package domain

// LinkState describes how far the two-sided account handshake has
// progressed. The connect flow performs one single-sided write per site, so
// a crash between the two writes leaves StateHalfLinked. Connect writes are
// idempotent; re-running the flow repairs a half-linked pair.
type LinkState string

const (
	StateUnlinked   LinkState = "unlinked"
	StateHalfLinked LinkState = "half-linked"
	StateLinked     LinkState = "linked"
)

// ResolveLinkState classifies the handshake given the local user's recorded
// link and the foreign user id the remote side reports for that link (empty
// when the remote side has no record, or when the remote side was not
// reachable to ask).
func ResolveLinkState(local *User, remoteForeignUserID string) LinkState {
	if !local.IsLinked() {
		if remoteForeignUserID != "" {
			return StateHalfLinked
		}
		return StateUnlinked
	}
	if remoteForeignUserID == local.ID {
		return StateLinked
	}
	return StateHalfLinked
}
