package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/progress-engine/internal/models"
)

const (
	profileQuery = `
		query userProfile($username: String!) {
			matchedUser(username: $username) {
				profile { ranking }
				submitStatsGlobal {
					acSubmissionNum { difficulty count }
				}
			}
		}`

	recentQuery = `
		query recentSubmissions($username: String!, $limit: Int!) {
			recentSubmissionList(username: $username, limit: $limit) {
				id title titleSlug statusDisplay lang timestamp runtime memory
			}
		}`

	acceptedQuery = `
		query recentAcSubmissions($username: String!, $limit: Int!) {
			recentAcSubmissionList(username: $username, limit: $limit) {
				id title titleSlug lang timestamp
			}
		}`

	questionQuery = `
		query questionMeta($titleSlug: String!) {
			question(titleSlug: $titleSlug) {
				difficulty
				topicTags { name }
			}
		}`
)

// HTTPClient implements Client against a GraphQL judge endpoint.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a judge client with the given endpoint and
// per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data json.RawMessage `json:"data"`
}

func (c *HTTPClient) query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     strings.ReplaceAll(query, "\n", " "),
		Variables: variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read judge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judge returned %s: %s", resp.Status, string(respBody))
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal judge response: %w", err)
	}

	return parsed.Data, nil
}

// Profile fetches the user's solved-count summary.
func (c *HTTPClient) Profile(ctx context.Context, handle string) (*Profile, error) {
	data, err := c.query(ctx, profileQuery, map[string]any{"username": handle})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		MatchedUser *struct {
			Profile struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if parsed.MatchedUser == nil {
		return nil, fmt.Errorf("judge has no user %q", handle)
	}

	profile := &Profile{Ranking: parsed.MatchedUser.Profile.Ranking}
	for _, n := range parsed.MatchedUser.SubmitStatsGlobal.AcSubmissionNum {
		switch models.ParseDifficulty(n.Difficulty) {
		case models.DifficultyEasy:
			profile.EasySolved = n.Count
		case models.DifficultyMedium:
			profile.MediumSolved = n.Count
		case models.DifficultyHard:
			profile.HardSolved = n.Count
		default:
			// "All" bucket carries the grand total
			profile.TotalSolved = n.Count
		}
	}
	if profile.TotalSolved == 0 {
		profile.TotalSolved = profile.EasySolved + profile.MediumSolved + profile.HardSolved
	}

	return profile, nil
}

// RecentSubmissions fetches the mixed-status recent feed.
func (c *HTTPClient) RecentSubmissions(ctx context.Context, handle string, limit int) ([]RawRecord, error) {
	return c.feed(ctx, recentQuery, "recentSubmissionList", handle, limit)
}

// AcceptedSubmissions fetches the accepted-only feed.
func (c *HTTPClient) AcceptedSubmissions(ctx context.Context, handle string, limit int) ([]RawRecord, error) {
	return c.feed(ctx, acceptedQuery, "recentAcSubmissionList", handle, limit)
}

func (c *HTTPClient) feed(ctx context.Context, query, field, handle string, limit int) ([]RawRecord, error) {
	data, err := c.query(ctx, query, map[string]any{"username": handle, "limit": limit})
	if err != nil {
		return nil, err
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var records []RawRecord
	if raw, ok := parsed[field]; ok {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("failed to parse feed records: %w", err)
		}
	}

	return records, nil
}

// ProblemMeta fetches difficulty and tags for one problem slug.
func (c *HTTPClient) ProblemMeta(ctx context.Context, slug string) (*ProblemMeta, error) {
	data, err := c.query(ctx, questionQuery, map[string]any{"titleSlug": slug})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Question *struct {
			Difficulty string `json:"difficulty"`
			TopicTags  []struct {
				Name string `json:"name"`
			} `json:"topicTags"`
		} `json:"question"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse question meta: %w", err)
	}
	if parsed.Question == nil {
		return nil, fmt.Errorf("judge has no problem %q", slug)
	}

	meta := &ProblemMeta{Difficulty: models.ParseDifficulty(parsed.Question.Difficulty)}
	for _, t := range parsed.Question.TopicTags {
		meta.Tags = append(meta.Tags, t.Name)
	}

	return meta, nil
}
