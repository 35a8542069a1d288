// Package ledger provides transports for the remote progress ledger.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/memory-match/internal/progress"
)

// ErrRejected is returned when the ledger answers a call with ok=false.
var ErrRejected = errors.New("ledger: call rejected")

// Defaults for the HTTP client.
const (
	DefaultTimeout = 15 * time.Second
	DefaultRPS     = 5
	DefaultBurst   = 10
)

// Options configures an HTTP client. Zero values select defaults.
type Options struct {
	HTTPClient *http.Client
	RPS        float64
	Burst      int
	Logger     *log.Logger
}

// HTTPClient calls the ledger's JSON RPC endpoint:
// POST {base}/rpc/{method} with {"user","level"}.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *log.Logger
}

var (
	_ progress.Actor  = (*HTTPClient)(nil)
	_ progress.Minter = (*HTTPClient)(nil)
)

// NewHTTP returns a client for the ledger at baseURL.
func NewHTTP(baseURL string, opts Options) *HTTPClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.RPS <= 0 {
		opts.RPS = DefaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("ledger")
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		log:        opts.Logger,
	}
}

type rpcRequest struct {
	User  string `json:"user"`
	Level int    `json:"level,omitempty"`
}

type rpcResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// CompleteLevel records a completed level.
func (c *HTTPClient) CompleteLevel(ctx context.Context, user progress.Principal, level int) (bool, error) {
	var ok bool
	err := c.call(ctx, progress.OpCompleteLevel, rpcRequest{User: string(user), Level: level}, &ok)
	return ok, err
}

// CompletedLevelsCount returns the number of levels the player completed.
func (c *HTTPClient) CompletedLevelsCount(ctx context.Context, user progress.Principal) (int, error) {
	var n int
	err := c.call(ctx, progress.OpCompletedLevelsCount, rpcRequest{User: string(user)}, &n)
	return n, err
}

// IsBadgeMinted reports whether the player holds the badge.
func (c *HTTPClient) IsBadgeMinted(ctx context.Context, user progress.Principal) (bool, error) {
	var minted bool
	err := c.call(ctx, progress.OpIsBadgeMinted, rpcRequest{User: string(user)}, &minted)
	return minted, err
}

// IsLevelCompleted reports whether the player completed level.
func (c *HTTPClient) IsLevelCompleted(ctx context.Context, user progress.Principal, level int) (bool, error) {
	var done bool
	err := c.call(ctx, progress.OpIsLevelCompleted, rpcRequest{User: string(user), Level: level}, &done)
	return done, err
}

// MintBadge issues the badge. Ledgers without the method answer 404, which
// is reported as progress.ErrMintUnsupported.
func (c *HTTPClient) MintBadge(ctx context.Context, user progress.Principal) (bool, error) {
	var minted bool
	err := c.call(ctx, progress.OpMintBadge, rpcRequest{User: string(user)}, &minted)
	return minted, err
}

func (c *HTTPClient) call(ctx context.Context, method string, in rpcRequest, out any) error {
	log := c.log.With("method", method, "user", in.User)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ledger: %s: %w", method, err)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ledger: %s: encode: %w", method, err)
	}

	url := c.baseURL + "/rpc/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed", "err", err)
		return fmt.Errorf("ledger: %s: %w", method, err)
	}
	defer resp.Body.Close()

	log.Debug("response received", "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode == http.StatusNotFound && method == progress.OpMintBadge {
		return fmt.Errorf("ledger: %s: %w", method, progress.ErrMintUnsupported)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("unexpected status", "status", resp.StatusCode, "body", string(snippet))
		return fmt.Errorf("ledger: %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("ledger: %s: decode: %w", method, err)
	}
	if !payload.OK {
		return fmt.Errorf("%w: %s: %s", ErrRejected, method, payload.Error)
	}
	if err := json.Unmarshal(payload.Result, out); err != nil {
		return fmt.Errorf("ledger: %s: decode result: %w", method, err)
	}
	return nil
}
