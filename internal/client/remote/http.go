package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// HTTPAuthority talks to the tripwit server over its JSON API.
type HTTPAuthority struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var _ Authority = (*HTTPAuthority)(nil)

// NewHTTPAuthority creates a client for the server at baseURL
// (e.g. "https://sync.tripwit.example").
func NewHTTPAuthority(baseURL string, timeout time.Duration) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetSession installs a previously saved JWT pair.
func (a *HTTPAuthority) SetSession(s Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = s.AccessToken
	a.refreshToken = s.RefreshToken
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one JSON request and decodes the response into out (when out
// is non-nil). Non-2xx responses become coded remote errors; transport
// failures are classified as timeout or unavailable so the syncer can
// retry them.
func (a *HTTPAuthority) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	a.mu.Lock()
	if a.accessToken != "" {
		req.Header.Set(common.AccessTokenHeaderName, a.accessToken)
	}
	a.mu.Unlock()

	resp, err := a.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return syncx.NewRemoteError(syncx.CodeInvalid, "malformed response: %s", err)
	}
	return nil
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return syncx.NewRemoteError(syncx.CodeTimeout, "%s", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return syncx.NewRemoteError(syncx.CodeTimeout, "%s", err)
	}
	return syncx.NewRemoteError(syncx.CodeUnavailable, "%s", err)
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &eb) == nil && eb.Code != "" {
		return syncx.NewRemoteError(syncx.ErrorCode(eb.Code), "%s", eb.Message)
	}
	// No coded body; fall back on the status class.
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return syncx.NewRemoteError(syncx.CodeUnauthorized, "%s", resp.Status)
	case http.StatusNotFound:
		return syncx.NewRemoteError(syncx.CodeNotFound, "%s", resp.Status)
	case http.StatusConflict:
		return syncx.NewRemoteError(syncx.CodeConflict, "%s", resp.Status)
	case http.StatusTooManyRequests:
		return syncx.NewRemoteError(syncx.CodeThrottled, "%s", resp.Status)
	case http.StatusGone:
		return syncx.NewRemoteError(syncx.CodeTokenExpired, "%s", resp.Status)
	case http.StatusBadRequest:
		return syncx.NewRemoteError(syncx.CodeInvalid, "%s", resp.Status)
	}
	return syncx.NewRemoteError(syncx.CodeUnavailable, "%s", resp.Status)
}

type registerRequest struct {
	Login  string `json:"login"`
	Secret string `json:"secret"`
}

func (a *HTTPAuthority) Register(ctx context.Context, login, secret string) error {
	return a.do(ctx, http.MethodPost, "/api/devices", registerRequest{Login: login, Secret: secret}, nil)
}

func (a *HTTPAuthority) Login(ctx context.Context, login, secret string) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/api/sessions", registerRequest{Login: login, Secret: secret}, &s)
	if err != nil {
		return Session{}, err
	}
	a.SetSession(s)
	return s, nil
}

type pushRequest struct {
	Scope   syncx.Scope   `json:"scope"`
	Entries []syncx.Entry `json:"entries"`
}

type pushResponse struct {
	Tokens []syncx.Token `json:"tokens"`
}

func (a *HTTPAuthority) PushChanges(ctx context.Context, scope syncx.Scope, entries []syncx.Entry) ([]syncx.Token, error) {
	var resp pushResponse
	err := a.do(ctx, http.MethodPost, "/api/changes", pushRequest{Scope: scope, Entries: entries}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

func (a *HTTPAuthority) FetchChangesSince(ctx context.Context, scope syncx.Scope, after syncx.Token) (ChangeBatch, error) {
	q := url.Values{}
	q.Set("scope", string(scope))
	if !after.IsZero() {
		q.Set("after", string(after))
	}
	var batch ChangeBatch
	err := a.do(ctx, http.MethodGet, "/api/changes?"+q.Encode(), nil, &batch)
	return batch, err
}

func (a *HTTPAuthority) FetchSnapshot(ctx context.Context, scope syncx.Scope) (ChangeBatch, error) {
	var batch ChangeBatch
	err := a.do(ctx, http.MethodGet, "/api/snapshot?scope="+url.QueryEscape(string(scope)), nil, &batch)
	return batch, err
}

type createShareRequest struct {
	TripID uuid.UUID `json:"trip_id"`
}

func (a *HTTPAuthority) CreateShare(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
	var share domain.Share
	err := a.do(ctx, http.MethodPost, "/api/shares", createShareRequest{TripID: tripID}, &share)
	return share, err
}

// shareToken extracts the opaque share token, the final path segment of
// an authority share URL.
func shareToken(shareURL string) (string, error) {
	u, err := url.Parse(shareURL)
	if err != nil || u.Path == "" {
		return "", syncx.NewRemoteError(syncx.CodeInvalid, "malformed share url")
	}
	parts := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	token := parts[len(parts)-1]
	if token == "" {
		return "", syncx.NewRemoteError(syncx.CodeInvalid, "share url has no token")
	}
	return token, nil
}

func (a *HTTPAuthority) FetchShareMetadata(ctx context.Context, shareURL string) (domain.Share, error) {
	token, err := shareToken(shareURL)
	if err != nil {
		return domain.Share{}, err
	}
	var share domain.Share
	err = a.do(ctx, http.MethodGet, "/api/shares/"+url.PathEscape(token), nil, &share)
	return share, err
}

func (a *HTTPAuthority) AcceptShare(ctx context.Context, shareURL string) (domain.Share, error) {
	token, err := shareToken(shareURL)
	if err != nil {
		return domain.Share{}, err
	}
	var share domain.Share
	err = a.do(ctx, http.MethodPost, "/api/shares/"+url.PathEscape(token)+"/accept", nil, &share)
	return share, err
}

func (a *HTTPAuthority) PersistShare(ctx context.Context, share domain.Share) (domain.Share, error) {
	var saved domain.Share
	err := a.do(ctx, http.MethodPut, "/api/shares/"+share.ZoneID.String(), share, &saved)
	return saved, err
}

func (a *HTTPAuthority) PurgeZone(ctx context.Context, zoneID uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, "/api/zones/"+zoneID.String(), nil, nil)
}

type presignRequest struct {
	Key string `json:"key"`
}

type presignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PresignUpload returns the object key and a presigned PUT URL for it.
// An empty key asks the authority to mint a fresh one.
func (a *HTTPAuthority) PresignUpload(ctx context.Context, key string) (string, string, error) {
	var resp presignResponse
	err := a.do(ctx, http.MethodPost, "/api/uploads", presignRequest{Key: key}, &resp)
	return resp.Key, resp.URL, err
}

func (a *HTTPAuthority) PresignDownload(ctx context.Context, key string) (string, error) {
	var resp presignResponse
	err := a.do(ctx, http.MethodGet, "/api/uploads/"+url.PathEscape(key), nil, &resp)
	return resp.URL, err
}
