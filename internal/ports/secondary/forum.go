package secondary

import (
	"context"
	"time"
)

// ForumClient defines the secondary port for the forum platform API.
// Implementations report privilege failures as ErrForbidden and every
// other failure as a *PlatformError.
type ForumClient interface {
	// NewSubmissions lists the newest submissions in a community, newest first.
	NewSubmissions(ctx context.Context, community string, limit int) ([]*SubmissionRecord, error)

	// SubmissionsByID batch-fetches submissions by fullname.
	// Submissions the platform no longer knows about are absent from the result.
	SubmissionsByID(ctx context.Context, ids []string) ([]*SubmissionRecord, error)

	// SendMessage sends a new private message. The platform does not return
	// the identity of the created message.
	SendMessage(ctx context.Context, to, subject, body string) error

	// LatestSentMessage returns the most recent message sent by the bot account.
	LatestSentMessage(ctx context.Context) (*MessageRecord, error)

	// UnreadMessages returns every unread inbox item.
	UnreadMessages(ctx context.Context) ([]*MessageRecord, error)

	// Reply answers a private message within its thread.
	Reply(ctx context.Context, messageID, body string) error

	// MarkRead marks an inbox item as read.
	MarkRead(ctx context.Context, messageID string) error

	// ApplyFlair sets moderator flair text and category on a submission.
	ApplyFlair(ctx context.Context, community, submissionID, text, cssClass string) error

	// RemoveSubmission removes a submission as a moderator.
	RemoveSubmission(ctx context.Context, submissionID string) error
}

// SubmissionRecord represents a submission as reported by the platform.
type SubmissionRecord struct {
	ID        string // fullname, e.g. t3_abc123
	Author    string // empty when deleted or suspended
	FlairText string // empty means no flair
	CreatedAt time.Time
	Shortlink string // deep link to the submission
	Removed   bool
}

// MessageKind distinguishes private messages from other inbox items.
type MessageKind string

const (
	// MessageKindPrivate is a private message.
	MessageKindPrivate MessageKind = "private"
	// MessageKindOther covers comment replies, mentions and notifications.
	MessageKindOther MessageKind = "other"
)

// MessageRecord represents an inbox or sent item.
type MessageRecord struct {
	ID             string // fullname, e.g. t4_xyz789
	Kind           MessageKind
	Author         string
	Subject        string
	Body           string
	FirstMessageID string // thread root fullname; empty when this is the root
	CreatedAt      time.Time
}

// ThreadRootID returns the fullname of the first message in the thread.
func (m *MessageRecord) ThreadRootID() string {
	if m.FirstMessageID != "" {
		return m.FirstMessageID
	}
	return m.ID
}
