package reddit

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/example/flairbot/internal/ports/secondary"
)

// Fullname prefixes.
const (
	kindComment    = "t1"
	kindSubmission = "t3"
	kindMessage    = "t4"
)

// deletedAuthor is what the platform reports for deleted or suspended accounts.
const deletedAuthor = "[deleted]"

// shortlinkBase is the platform's deep-link host.
const shortlinkBase = "https://redd.it/"

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type submissionData struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Author            string  `json:"author"`
	LinkFlairText     *string `json:"link_flair_text"`
	CreatedUTC        float64 `json:"created_utc"`
	RemovedByCategory *string `json:"removed_by_category"`
}

type messageData struct {
	Name             string  `json:"name"`
	Author           string  `json:"author"`
	Subject          string  `json:"subject"`
	Body             string  `json:"body"`
	FirstMessageName *string `json:"first_message_name"`
	CreatedUTC       float64 `json:"created_utc"`
	WasComment       bool    `json:"was_comment"`
}

// apiResponse is the envelope returned by api_type=json endpoints.
type apiResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
	} `json:"json"`
}

func parseListing(body []byte) (*listing, error) {
	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}
	return &l, nil
}

func (t thing) submission() (*secondary.SubmissionRecord, error) {
	var d submissionData
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse submission: %w", err)
	}

	record := &secondary.SubmissionRecord{
		ID:        d.Name,
		Author:    normalizeAuthor(d.Author),
		CreatedAt: fromUnix(d.CreatedUTC),
		Shortlink: Shortlink(d.Name),
		Removed:   d.RemovedByCategory != nil && *d.RemovedByCategory != "",
	}
	if d.LinkFlairText != nil {
		record.FlairText = *d.LinkFlairText
	}
	return record, nil
}

func (t thing) message() (*secondary.MessageRecord, error) {
	var d messageData
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	record := &secondary.MessageRecord{
		ID:        d.Name,
		Kind:      secondary.MessageKindOther,
		Author:    normalizeAuthor(d.Author),
		Subject:   d.Subject,
		Body:      d.Body,
		CreatedAt: fromUnix(d.CreatedUTC),
	}
	if t.Kind == kindMessage && !d.WasComment {
		record.Kind = secondary.MessageKindPrivate
	}
	if d.FirstMessageName != nil {
		record.FirstMessageID = *d.FirstMessageName
	}
	return record, nil
}

// errors returns the api_type=json error list as one message, or "".
func (r *apiResponse) errors() string {
	if len(r.JSON.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.JSON.Errors))
	for _, e := range r.JSON.Errors {
		fields := make([]string, 0, len(e))
		for _, f := range e {
			if f != nil {
				fields = append(fields, fmt.Sprint(f))
			}
		}
		parts = append(parts, strings.Join(fields, ": "))
	}
	return strings.Join(parts, "; ")
}

// Shortlink returns the deep link for a submission fullname.
func Shortlink(fullname string) string {
	return shortlinkBase + strings.TrimPrefix(fullname, kindSubmission+"_")
}

func normalizeAuthor(author string) string {
	if author == deletedAuthor {
		return ""
	}
	return author
}

func fromUnix(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
