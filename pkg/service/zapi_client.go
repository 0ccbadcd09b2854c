// Z-API WhatsApp transport client
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/konekta/ouvidoria/pkg/utils"
)

// MessageSender is the outbound side of the conversation: plain text and
// button-choice messages. The engine depends on this interface so tests can
// swap in a recorder.
type MessageSender interface {
	SendText(to, message string) error
	SendChoice(to, title string, options []string) error
}

// ZApiClient talks to the Z-API REST endpoints for one WhatsApp instance.
type ZApiClient struct {
	httpClient  *http.Client
	baseURL     string
	instanceID  string
	token       string
	clientToken string
	logger      *slog.Logger
}

// NewZApiClient creates a new Z-API client
func NewZApiClient(baseURL, instanceID, token, clientToken string) *ZApiClient {
	return &ZApiClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     baseURL,
		instanceID:  instanceID,
		token:       token,
		clientToken: clientToken,
		logger:      utils.GetLogger(),
	}
}

// SendText delivers a plain text message.
func (c *ZApiClient) SendText(to, message string) error {
	payload := map[string]any{
		"phone":   to,
		"message": message,
	}
	return c.post("send-text", payload)
}

// SendChoice delivers a message with REPLY buttons. Button ids are 1-based
// positions; the reply webhook carries the label text, which is what the
// state handlers match on.
func (c *ZApiClient) SendChoice(to, title string, options []string) error {
	buttons := make([]map[string]any, 0, len(options))
	for i, label := range options {
		buttons = append(buttons, map[string]any{
			"id":    strconv.Itoa(i + 1),
			"type":  "REPLY",
			"label": label,
		})
	}

	payload := map[string]any{
		"phone":         to,
		"message":       title,
		"title":         "Ouvidoria - Escolha uma opção",
		"footer":        "Selecione uma das opções abaixo:",
		"buttonActions": buttons,
	}
	return c.post("send-button-actions", payload)
}

func (c *ZApiClient) post(endpoint string, payload map[string]any) error {
	url := fmt.Sprintf("%s/instances/%s/token/%s/%s", c.baseURL, c.instanceID, c.token, endpoint)

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal zapi payload")
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build zapi request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Token", c.clientToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "zapi %s request", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Z-API request failed", "endpoint", endpoint, "status", resp.StatusCode, "body", string(respBody))
		return errors.Errorf("zapi %s returned status %d", endpoint, resp.StatusCode)
	}

	c.logger.Debug("Z-API message sent", "endpoint", endpoint, "to", payload["phone"])
	return nil
}
