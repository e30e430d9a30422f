package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a Go SDK for the progress-engine API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new progress-engine client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// User is a user response including derived progress state
type User struct {
	ID             string     `json:"id"`
	Handle         string     `json:"handle"`
	Username       string     `json:"username"`
	EasySolved     int        `json:"easy_solved"`
	MediumSolved   int        `json:"medium_solved"`
	HardSolved     int        `json:"hard_solved"`
	TotalSolved    int        `json:"total_solved"`
	XP             int64      `json:"xp"`
	Level          int        `json:"level"`
	CurrentStreak  int        `json:"current_streak"`
	MaxStreak      int        `json:"max_streak"`
	LastSolvedDate *time.Time `json:"last_solved_date,omitempty"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	Badges         []Badge    `json:"badges"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Badge is one earned milestone
type Badge struct {
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earned_at"`
}

// SyncResult reports the outcome of a sync pass
type SyncResult struct {
	XPGained       int64    `json:"xp_gained"`
	LeveledUp      bool     `json:"leveled_up"`
	NewBadges      []string `json:"new_badges"`
	NewSubmissions int      `json:"new_submissions"`
}

// XPEntry is one XP audit record
type XPEntry struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Delta     int64             `json:"delta"`
	Reason    string            `json:"reason"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// RegisterUserRequest registers a new tracked user
type RegisterUserRequest struct {
	Handle   string `json:"handle"`
	Username string `json:"username,omitempty"`
}

// ChallengeResultRequest reports a completed timed challenge
type ChallengeResultRequest struct {
	Easy    int  `json:"easy"`
	Medium  int  `json:"medium"`
	Hard    int  `json:"hard"`
	Success bool `json:"success"`
}

// ScoreWeights holds per-difficulty competition point weights
type ScoreWeights struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// CreateCompetitionRequest creates a new competition
type CreateCompetitionRequest struct {
	Name         string        `json:"name"`
	StartAt      time.Time     `json:"start_at"`
	EndAt        time.Time     `json:"end_at"`
	ProblemSlugs []string      `json:"problem_slugs"`
	Weights      *ScoreWeights `json:"weights,omitempty"`
}

// Competition is a competition response
type Competition struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	StartAt      time.Time    `json:"start_at"`
	EndAt        time.Time    `json:"end_at"`
	ProblemSlugs []string     `json:"problem_slugs"`
	Weights      ScoreWeights `json:"weights"`
	CreatedAt    time.Time    `json:"created_at"`
}

// LeaderboardRow is one derived competition standing
type LeaderboardRow struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	EasySolved  int       `json:"easy_solved"`
	MedSolved   int       `json:"medium_solved"`
	HardSolved  int       `json:"hard_solved"`
	Solved      int       `json:"solved"`
	Points      int       `json:"points"`
	LastSolveAt time.Time `json:"last_solve_at"`
}

// RegisterUser registers a new tracked user and kicks off the
// best-effort bootstrap sync server-side
func (c *Client) RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeEnvelope(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDashboard retrieves the user's aggregate snapshot
func (c *Client) GetDashboard(ctx context.Context, userID string) (*User, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/users/%s/dashboard", userID), nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeEnvelope(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TriggerSync runs a sync pass for the user and returns its outcome
func (c *Client) TriggerSync(ctx context.Context, userID string) (*SyncResult, error) {
	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/users/%s/sync", userID), nil)
	if err != nil {
		return nil, err
	}

	var result SyncResult
	if err := decodeEnvelope(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitChallengeResult applies a timed-challenge XP award
func (c *Client) SubmitChallengeResult(ctx context.Context, userID string, req ChallengeResultRequest) (*SyncResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/users/%s/challenge-result", userID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result SyncResult
	if err := decodeEnvelope(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetXPLog retrieves a page of the user's XP log, newest first
func (c *Client) GetXPLog(ctx context.Context, userID string, limit, offset int) ([]XPEntry, error) {
	path := fmt.Sprintf("/api/v1/users/%s/xp-log?limit=%d&offset=%d", userID, limit, offset)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var entries []XPEntry
	if err := decodeEnvelope(resp, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateCompetition creates a new competition
func (c *Client) CreateCompetition(ctx context.Context, req CreateCompetitionRequest) (*Competition, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/competitions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var comp Competition
	if err := decodeEnvelope(resp, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

// JoinCompetition joins a user to a competition
func (c *Client) JoinCompetition(ctx context.Context, competitionID, userID string) error {
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/competitions/%s/join", competitionID), bytes.NewReader(body))
	if err != nil {
		return err
	}

	return decodeEnvelope(resp, nil)
}

// GetLeaderboard retrieves the competition's current standings
func (c *Client) GetLeaderboard(ctx context.Context, competitionID string) ([]LeaderboardRow, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/competitions/%s/leaderboard", competitionID), nil)
	if err != nil {
		return nil, err
	}

	var rows []LeaderboardRow
	if err := decodeEnvelope(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// doRequest performs an HTTP request and returns the raw response body
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, nil
}

// decodeEnvelope unwraps the API's response envelope into data
func decodeEnvelope(resp []byte, data any) error {
	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		if result.Error != nil {
			return fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
		}
		return fmt.Errorf("API error: request failed")
	}

	if data != nil && result.Data != nil {
		if err := json.Unmarshal(result.Data, data); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}
