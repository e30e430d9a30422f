package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/progress-engine/internal/judge"
	"github.com/terra-clan/progress-engine/internal/models"
)

// Feed identifies which external feed a raw record came from.
type Feed string

const (
	FeedRecent   Feed = "recent"
	FeedAccepted Feed = "accepted"
)

// ErrMalformedRecord marks a raw record whose slug or timestamp cannot
// be determined. The record is dropped; it never fails the pass.
var ErrMalformedRecord = errors.New("malformed feed record")

// Candidate is a normalized, not-yet-persisted representation of one
// external submission.
type Candidate struct {
	ExternalID  string
	Slug        string
	Title       string
	Status      string
	Language    string
	Runtime     string
	Memory      string
	SubmittedAt time.Time
}

// IdentityKey is the deduplication key: the external id when the feed
// supplied one, else slug plus epoch seconds.
func (c Candidate) IdentityKey() string {
	if c.ExternalID != "" {
		return c.ExternalID
	}
	return fmt.Sprintf("%s-%d", c.Slug, c.SubmittedAt.Unix())
}

// Accepted reports whether the candidate records an accepted solve.
func (c Candidate) Accepted() bool {
	return c.Status == models.StatusAccepted
}

// The feeds disagree on field names, so each canonical field has an
// ordered alias list tried in priority order.
var (
	idKeys      = []string{"id", "submissionId", "submission_id"}
	slugKeys    = []string{"titleSlug", "title_slug", "slug", "questionSlug"}
	titleKeys   = []string{"title", "questionTitle", "problemTitle"}
	statusKeys  = []string{"statusDisplay", "status", "state"}
	langKeys    = []string{"lang", "language"}
	epochKeys   = []string{"timestamp", "submittedAt", "submitTime", "time"}
	runtimeKeys = []string{"runtime", "runtimeDisplay"}
	memoryKeys  = []string{"memory", "memoryDisplay"}
)

// Epoch values at or above this magnitude are milliseconds.
const millisThreshold = int64(1e12)

// Normalize converts one raw feed record into a Candidate, or rejects
// it when slug or timestamp cannot be determined. Records from the
// accepted-only feed default to Accepted when no status field is present.
func Normalize(rec judge.RawRecord, source Feed) (Candidate, error) {
	slug := stringField(rec, slugKeys)
	if slug == "" {
		return Candidate{}, fmt.Errorf("%w: missing slug", ErrMalformedRecord)
	}

	epoch, ok := epochField(rec, epochKeys)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: missing timestamp for %s", ErrMalformedRecord, slug)
	}
	if epoch >= millisThreshold {
		epoch /= 1000
	}

	status := canonicalStatus(stringField(rec, statusKeys))
	if status == "" && source == FeedAccepted {
		status = models.StatusAccepted
	}

	return Candidate{
		ExternalID:  stringField(rec, idKeys),
		Slug:        slug,
		Title:       stringField(rec, titleKeys),
		Status:      status,
		Language:    stringField(rec, langKeys),
		Runtime:     stringField(rec, runtimeKeys),
		Memory:      stringField(rec, memoryKeys),
		SubmittedAt: time.Unix(epoch, 0).UTC(),
	}, nil
}

// NormalizeAll normalizes a whole feed, dropping malformed records.
// Returns the candidates and the number of drops.
func NormalizeAll(recs []judge.RawRecord, source Feed) ([]Candidate, int) {
	var out []Candidate
	dropped := 0
	for _, rec := range recs {
		c, err := Normalize(rec, source)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}

func canonicalStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "accepted", "ac", "10":
		return models.StatusAccepted
	default:
		return strings.TrimSpace(s)
	}
}

func stringField(rec judge.RawRecord, keys []string) string {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case json.Number:
			return val.String()
		case float64:
			return strconv.FormatInt(int64(val), 10)
		case int64:
			return strconv.FormatInt(val, 10)
		case int:
			return strconv.Itoa(val)
		}
	}
	return ""
}

func epochField(rec judge.RawRecord, keys []string) (int64, bool) {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			if val > 0 {
				return int64(val), true
			}
		case int64:
			if val > 0 {
				return val, true
			}
		case int:
			if val > 0 {
				return int64(val), true
			}
		case json.Number:
			if n, err := val.Int64(); err == nil && n > 0 {
				return n, true
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}
