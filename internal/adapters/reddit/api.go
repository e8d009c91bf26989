package reddit

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/flairbot/internal/ports/secondary"
)

// Listing limits.
const (
	maxPageSize        = 100
	maxInfoBatch       = 100
	maxUnreadPages     = 10
	maxSubmissionPages = 10
)

// NewSubmissions lists the newest submissions in a community, newest first.
func (c *Client) NewSubmissions(ctx context.Context, community string, limit int) ([]*secondary.SubmissionRecord, error) {
	path := "/r/" + url.PathEscape(community) + "/new"
	if limit <= 0 {
		limit = maxPageSize
	}

	var records []*secondary.SubmissionRecord
	after := ""
	for page := 0; page < maxSubmissionPages && len(records) < limit; page++ {
		query := url.Values{"limit": {strconv.Itoa(min(limit-len(records), maxPageSize))}}
		if after != "" {
			query.Set("after", after)
		}

		l, err := c.getListing(ctx, path, query)
		if err != nil {
			return nil, err
		}
		for _, child := range l.Data.Children {
			if child.Kind != kindSubmission {
				continue
			}
			record, err := child.submission()
			if err != nil {
				return nil, &secondary.PlatformError{Op: "GET " + path, Message: "malformed submission", Err: err}
			}
			records = append(records, record)
		}

		after = l.Data.After
		if after == "" || len(l.Data.Children) == 0 {
			break
		}
	}
	return records, nil
}

// SubmissionsByID batch-fetches submissions through /api/info.
func (c *Client) SubmissionsByID(ctx context.Context, ids []string) ([]*secondary.SubmissionRecord, error) {
	var records []*secondary.SubmissionRecord
	for start := 0; start < len(ids); start += maxInfoBatch {
		end := min(start+maxInfoBatch, len(ids))

		l, err := c.getListing(ctx, "/api/info", url.Values{"id": {strings.Join(ids[start:end], ",")}})
		if err != nil {
			return nil, err
		}
		for _, child := range l.Data.Children {
			if child.Kind != kindSubmission {
				continue
			}
			record, err := child.submission()
			if err != nil {
				return nil, &secondary.PlatformError{Op: "GET /api/info", Message: "malformed submission", Err: err}
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// SendMessage composes a new private message.
func (c *Client) SendMessage(ctx context.Context, to, subject, body string) error {
	return c.postAPI(ctx, "/api/compose", url.Values{
		"to":      {to},
		"subject": {subject},
		"text":    {body},
	})
}

// LatestSentMessage returns the newest item in the sent folder, or nil
// when the folder is empty.
func (c *Client) LatestSentMessage(ctx context.Context) (*secondary.MessageRecord, error) {
	l, err := c.getListing(ctx, "/message/sent", url.Values{"limit": {"1"}})
	if err != nil {
		return nil, err
	}
	if len(l.Data.Children) == 0 {
		return nil, nil
	}
	record, err := l.Data.Children[0].message()
	if err != nil {
		return nil, &secondary.PlatformError{Op: "GET /message/sent", Message: "malformed message", Err: err}
	}
	return record, nil
}

// UnreadMessages pages through the unread inbox without marking anything read.
func (c *Client) UnreadMessages(ctx context.Context) ([]*secondary.MessageRecord, error) {
	var records []*secondary.MessageRecord
	after := ""
	for page := 0; page < maxUnreadPages; page++ {
		query := url.Values{
			"limit": {strconv.Itoa(maxPageSize)},
			"mark":  {"false"},
		}
		if after != "" {
			query.Set("after", after)
		}

		l, err := c.getListing(ctx, "/message/unread", query)
		if err != nil {
			return nil, err
		}
		for _, child := range l.Data.Children {
			if child.Kind != kindMessage && child.Kind != kindComment {
				continue
			}
			record, err := child.message()
			if err != nil {
				return nil, &secondary.PlatformError{Op: "GET /message/unread", Message: "malformed message", Err: err}
			}
			records = append(records, record)
		}

		after = l.Data.After
		if after == "" {
			break
		}
	}
	return records, nil
}

// Reply answers a private message within its thread.
func (c *Client) Reply(ctx context.Context, messageID, body string) error {
	return c.postAPI(ctx, "/api/comment", url.Values{
		"thing_id": {messageID},
		"text":     {body},
	})
}

// MarkRead marks an inbox item as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	_, err := c.post(ctx, "/api/read_message", url.Values{"id": {messageID}})
	return err
}

// ApplyFlair sets link flair as a moderator of community.
func (c *Client) ApplyFlair(ctx context.Context, community, submissionID, text, cssClass string) error {
	return c.postAPI(ctx, "/r/"+url.PathEscape(community)+"/api/flair", url.Values{
		"link":      {submissionID},
		"text":      {text},
		"css_class": {cssClass},
	})
}

// RemoveSubmission removes a submission as a moderator.
func (c *Client) RemoveSubmission(ctx context.Context, submissionID string) error {
	_, err := c.post(ctx, "/api/remove", url.Values{
		"id":   {submissionID},
		"spam": {"false"},
	})
	return err
}

func (c *Client) getListing(ctx context.Context, path string, query url.Values) (*listing, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	l, err := parseListing(body)
	if err != nil {
		return nil, &secondary.PlatformError{Op: "GET " + path, Message: "malformed listing", Err: err}
	}
	return l, nil
}

// postAPI posts to an api_type=json endpoint, which reports failures in a
// 200 response body.
func (c *Client) postAPI(ctx context.Context, path string, form url.Values) error {
	form.Set("api_type", "json")
	body, err := c.post(ctx, path, form)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}

	var response apiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		// Some endpoints answer {} or a bare listing; only a parsable error list matters.
		return nil
	}
	if msg := response.errors(); msg != "" {
		return &secondary.PlatformError{Op: "POST " + path, StatusCode: 200, Message: msg}
	}
	return nil
}
