package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ikiguide/ikiguide/internal/config"
	"github.com/ikiguide/ikiguide/internal/logger"
)

const (
	graphSendMailURL = "https://graph.microsoft.com/v1.0/users/%s/sendMail"
	graphScope       = "https://graph.microsoft.com/.default"
	tokenURLFormat   = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	sendTimeout = 10 * time.Second
)

// GraphSender sends mail through Microsoft Graph using the client
// credentials flow.
type GraphSender struct {
	cfg    config.EmailConfig
	client *http.Client
}

// NewGraphSender builds a sender from the Azure AD application settings.
func NewGraphSender(cfg config.EmailConfig) (*GraphSender, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("email configuration is incomplete")
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, cfg.TenantID),
		Scopes:       []string{graphScope},
	}

	// The oauth2 client caches and refreshes the token transparently.
	return &GraphSender{
		cfg:    cfg,
		client: creds.Client(context.Background()),
	}, nil
}

type graphRecipient struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphMessage struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	ToRecipients []graphRecipient `json:"toRecipients"`
}

type graphSendRequest struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems string       `json:"saveToSentItems"`
}

// Send posts the message to the Graph sendMail endpoint. Any status other
// than 200, 201 or 202 is an error.
func (g *GraphSender) Send(ctx context.Context, msg Message) error {
	payload := graphSendRequest{SaveToSentItems: "false"}
	payload.Message.Subject = msg.Subject
	payload.Message.Body.ContentType = "HTML"
	payload.Message.Body.Content = msg.HTMLBody
	recipient := graphRecipient{}
	recipient.EmailAddress.Address = msg.To
	payload.Message.ToRecipients = []graphRecipient{recipient}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sendMail payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	url := fmt.Sprintf(graphSendMailURL, g.cfg.From)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sendMail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("email sending request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Error().
			Int("status", resp.StatusCode).
			Str("response", string(detail)).
			Msg("email sending failed")
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}

	logger.Info().Str("recipient", msg.To).Msg("results emailed")
	return nil
}
