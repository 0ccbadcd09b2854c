// Z-API webhook payload types
package models

// MessageStatusCallback payloads carry delivery receipts, not user text.
const TypeMessageStatusCallback = "MessageStatusCallback"

// ZApiWebhookPayload is the inbound webhook body posted by Z-API. Only the
// fields the intake flow needs are mapped; unknown fields are ignored by
// the JSON decoder.
type ZApiWebhookPayload struct {
	InstanceID  string       `json:"instanceId"`
	MessageID   string       `json:"messageId"`
	Phone       string       `json:"phone"`
	FromMe      bool         `json:"fromMe"`
	Momment     int64        `json:"momment"`
	Status      string       `json:"status"`
	SenderName  string       `json:"senderName"`
	IsGroup     bool         `json:"isGroup"`
	Type        string       `json:"type"`
	Text        *TextObject  `json:"text,omitempty"`
	ButtonReply *ButtonReply `json:"buttonReply,omitempty"`
}

// TextObject wraps a plain text message
type TextObject struct {
	Message string `json:"message"`
}

// ButtonReply is the user's tap on a REPLY button; the label comes back in
// Message and is matched against option labels, not button ids.
type ButtonReply struct {
	ButtonID           string `json:"buttonId"`
	Message            string `json:"message"`
	ReferenceMessageID string `json:"referenceMessageId"`
}

// MessageText returns the effective user text of the payload. Button replies
// take precedence over plain text; an empty string means there is nothing
// for the engine to process.
func (p *ZApiWebhookPayload) MessageText() string {
	if p.ButtonReply != nil {
		return p.ButtonReply.Message
	}
	if p.Text != nil {
		return p.Text.Message
	}
	return ""
}
