// Package templates renders the private messages the bot sends.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed messages/*.tmpl
var messageTemplates embed.FS

// Message subjects.
const (
	PromptSubject  = "Please flair your post!"
	RemovalSubject = "Your post has been removed as you did not flair it in time."
)

var parsed = template.Must(template.ParseFS(messageTemplates, "messages/*.tmpl"))

// PromptData holds the values rendered into a flair prompt.
type PromptData struct {
	Shortlink       string
	DeadlineMinutes int
	GuideURL        string
	Flairs          []string
}

// RenderPrompt renders the private message asking an author to flair a post.
func RenderPrompt(data PromptData) (string, error) {
	return render("prompt.tmpl", data)
}

// RenderRejection renders the reply to a message without a valid flair.
func RenderRejection(body string) (string, error) {
	return render("rejection.tmpl", struct{ Body string }{Body: body})
}

// RenderRemoval renders the notice sent after a post is removed.
func RenderRemoval(shortlink string) (string, error) {
	return render("removal.tmpl", struct{ Shortlink string }{Shortlink: shortlink})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
