// Package client implements the outbound half of the crosspost protocol:
// signed single request/response calls against the remote site's API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	apierrors "github.com/openlore/crosspost/errors"
)

// Route identifies one logical protocol operation on the remote site.
type Route string

const (
	RouteCrosspostToken     Route = "/api/crosspostToken"
	RouteConnectCrossposter Route = "/api/connectCrossposter"
	RouteUnlinkCrossposter  Route = "/api/unlinkCrossposter"
	RouteCrosspost          Route = "/api/crosspost"
	RouteUpdateCrosspost    Route = "/api/updateCrosspost"
)

// userAgent distinguishes crosspost traffic so remote sites can identify and
// rate-limit it in their own infrastructure.
const userAgent = "openlore-crosspost/1.0 Crossposter"

// localDevPort is the well-known local development port. Connection refusal
// against it degrades gracefully instead of failing, so a site running
// without its counterpart in development does not break post flows.
const localDevPort = "3000"

// tosNotAcceptedRemoteError is the sentinel the remote site reports when the
// linked account there has not accepted its terms of use. The raw message
// references remote-site UI the local user never sees, so it is remapped.
const tosNotAcceptedRemoteError = "You must accept the terms of use before you can publish this post"

// CrossSiteClient makes signed calls against the remote site configured for
// this deployment. Every call is one request/response pair bounded by the
// client's timeout; timeout is the only cancellation mechanism.
type CrossSiteClient struct {
	baseURL        string
	remoteSiteName string
	timeout        time.Duration
	httpClient     *http.Client
}

// NewCrossSiteClient creates a client for the remote site at baseURL. The
// timeout bounds each call end to end; zero means no deadline.
// remoteSiteName appears in remapped error messages shown to local users.
func NewCrossSiteClient(baseURL, remoteSiteName string, timeout time.Duration, httpClient *http.Client) *CrossSiteClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CrossSiteClient{
		baseURL:        baseURL,
		remoteSiteName: remoteSiteName,
		timeout:        timeout,
		httpClient:     httpClient,
	}
}

// Enabled reports whether a remote site is configured at all.
func (c *CrossSiteClient) Enabled() bool {
	return c.baseURL != ""
}

func (c *CrossSiteClient) apiURL(route Route) string {
	return c.baseURL + string(route)
}

// statusDocument is the minimal shape every protocol response shares.
type statusDocument struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// makeRequest performs one cross-site call and decodes the response into
// out. A nil body sends a GET. Transport failures are taxonomized: deadline
// expiry maps to ErrRequestTimedOut (outcome unknown), refusal to
// ErrConnectionRefused, except that refusal against the local development
// port is skipped after a warning. The returned bool reports that skip;
// it is never true under a production base URL.
func (c *CrossSiteClient) makeRequest(ctx context.Context, route Route, body any, out any) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(route), nil)
	} else {
		var encoded []byte
		encoded, err = json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode %s request: %w", route, err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL(route), bytes.NewReader(encoded))
	}
	if err != nil {
		return false, fmt.Errorf("failed to build %s request: %w", route, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return false, fmt.Errorf("%s: %w", route, apierrors.ErrRequestTimedOut)
		case errors.Is(err, syscall.ECONNREFUSED):
			if c.isLocalDev() {
				log.Warn().Str("route", string(route)).Str("base_url", c.baseURL).
					Msg("Cross-site connection refused in development, skipping call")
				return true, nil
			}
			return false, fmt.Errorf("%s: %w", route, apierrors.ErrConnectionRefused)
		default:
			return false, fmt.Errorf("cross-site request to %s failed: %w", route, err)
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read %s response: %w", route, err)
	}

	var doc statusDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("failed to decode %s response: %w", route, err)
	}
	if doc.Error != "" {
		return false, c.remapRemoteError(doc.Error)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return false, fmt.Errorf("failed to decode %s response: %w", route, err)
		}
	}
	return false, nil
}

// isLocalDev reports whether the configured remote base URL targets the
// local development port. Production configurations never match.
func (c *CrossSiteClient) isLocalDev() bool {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return parsed.Port() == localDevPort
}

// remapRemoteError translates a remote-reported error into something
// meaningful on this site. The terms-of-use sentinel gets a site-specific
// message; everything else passes through as a crosspost failure.
func (c *CrossSiteClient) remapRemoteError(remoteMessage string) error {
	if remoteMessage == tosNotAcceptedRemoteError {
		siteName := c.remoteSiteName
		if siteName == "" {
			siteName = "the crossposting site"
		}
		return apierrors.NewCrosspostError(fmt.Sprintf(
			"You must accept the terms of use on %s before you can crosspost there", siteName))
	}
	return apierrors.NewCrosspostError(remoteMessage)
}

// expectStatus validates the status field of a decoded response. A response
// without the expected status is schema-invalid, whatever else it carries.
func expectStatus(got, want, onErrorMessage string) error {
	if got != want {
		return apierrors.NewCrosspostError(onErrorMessage)
	}
	return nil
}

// ConnectResponse is the remote site's reply to a connect call.
type ConnectResponse struct {
	Status        string `json:"status"`
	ForeignUserID string `json:"foreignUserId"`
	LocalUserID   string `json:"localUserId"`
}

// ConnectCrossposter presents a connect token minted by the remote site
// together with the local user id, completing the remote half of the
// account-link handshake. A nil response with a nil error means the call was
// skipped by the development fallback.
func (c *CrossSiteClient) ConnectCrossposter(ctx context.Context, token, localUserID string) (*ConnectResponse, error) {
	var out ConnectResponse
	body := map[string]string{"token": token, "localUserId": localUserID}
	skipped, err := c.makeRequest(ctx, RouteConnectCrossposter, body, &out)
	if err != nil {
		return nil, err
	}
	if skipped {
		return nil, nil
	}
	if err := expectStatus(out.Status, "connected", "Failed to connect accounts for crossposting"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnlinkCrossposter asks the remote site to clear its half of the link.
func (c *CrossSiteClient) UnlinkCrossposter(ctx context.Context, token string) error {
	var out statusDocument
	skipped, err := c.makeRequest(ctx, RouteUnlinkCrossposter, map[string]string{"token": token}, &out)
	if err != nil || skipped {
		return err
	}
	return expectStatus(out.Status, "unlinked", "Failed to unlink crossposting accounts")
}

// CrosspostResponse is the remote site's reply to a crosspost call. PostID
// is the id of the freshly-created mirror.
type CrosspostResponse struct {
	Status string `json:"status"`
	PostID string `json:"postId"`
}

// CreateCrosspost asks the remote site to create a mirror for the origin
// post identified by postID. A nil response with a nil error means the call
// was skipped by the development fallback.
func (c *CrossSiteClient) CreateCrosspost(ctx context.Context, token, postID, postTitle string) (*CrosspostResponse, error) {
	var out CrosspostResponse
	body := map[string]string{"token": token, "postId": postID, "postTitle": postTitle}
	skipped, err := c.makeRequest(ctx, RouteCrosspost, body, &out)
	if err != nil {
		return nil, err
	}
	if skipped {
		return nil, nil
	}
	if err := expectStatus(out.Status, "posted", "Failed to create crosspost"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCrosspost pushes the origin's current denormalized data to the
// mirror. All the data travels inside the token.
func (c *CrossSiteClient) UpdateCrosspost(ctx context.Context, token string) error {
	var out statusDocument
	skipped, err := c.makeRequest(ctx, RouteUpdateCrosspost, map[string]string{"token": token}, &out)
	if err != nil || skipped {
		return err
	}
	return expectStatus(out.Status, "updated", "Failed to update crosspost")
}
