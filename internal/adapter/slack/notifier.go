// Package slack delivers escalation alerts to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/greenlight-hq/greenlight/internal/port/notifier"
)

const providerName = "slack"

// Notifier posts Block Kit messages to an incoming webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier creates a Slack notifier with the given webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
}

func (n *Notifier) Name() string { return providerName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		RichFormatting: true,
		DirectMessage:  false,
	}
}

// message is the Block Kit webhook payload.
type message struct {
	Blocks []block `json:"blocks"`
}

type block struct {
	Type   string       `json:"type"`
	Text   *textObject  `json:"text,omitempty"`
	Fields []textObject `json:"fields,omitempty"`
}

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func plain(s string) *textObject  { return &textObject{Type: "plain_text", Text: s} }
func mrkdwn(s string) *textObject { return &textObject{Type: "mrkdwn", Text: s} }

// buildBlocks lays the notification out as header, message, one field pair
// per structured detail, and a source footer.
func buildBlocks(n notifier.Notification) []block {
	blocks := []block{
		{Type: "header", Text: plain(fmt.Sprintf("%s %s", levelTag(n.Level), n.Title))},
		{Type: "section", Text: mrkdwn(n.Message)},
	}

	if len(n.Fields) > 0 {
		fields := make([]textObject, 0, len(n.Fields))
		for _, f := range n.Fields {
			fields = append(fields, *mrkdwn(fmt.Sprintf("*%s:*\n%s", f.Label, f.Value)))
		}
		blocks = append(blocks, block{Type: "section", Fields: fields})
	}

	if n.Source != "" {
		blocks = append(blocks, block{
			Type: "context",
			Text: mrkdwn(fmt.Sprintf("_Source: %s_", n.Source)),
		})
	}
	return blocks
}

func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	body, err := json.Marshal(message{Blocks: buildBlocks(notification)})
	if err != nil {
		return fmt.Errorf("slack marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack API %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func levelTag(level string) string {
	switch level {
	case "success":
		return "[OK]"
	case "error":
		return "[ERROR]"
	case "warning":
		return "[WARN]"
	default:
		return "[INFO]"
	}
}
