package transfer

// MessagingEvent is the normalized shape every decoded webhook message is
// reduced to. It is also the queue task payload, so field names are stable.
type MessagingEvent struct {
	MID           string `json:"mid"`
	SenderIGID    string `json:"sender_ig_id"`
	RecipientIGID string `json:"recipient_ig_id"`
	Timestamp     string `json:"timestamp"`
	MessageText   string `json:"message_text,omitempty"`
	Attachments   []any  `json:"attachments,omitempty"`
}

// WebhookEnvelope is the standard multi-entry shape Instagram delivers.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string             `json:"id"`
	Time      int64              `json:"time"`
	Messaging []MessagingPayload `json:"messaging"`
}

type MessagingPayload struct {
	Sender    IGIdentity      `json:"sender"`
	Recipient IGIdentity      `json:"recipient"`
	Timestamp any             `json:"timestamp"`
	Message   *MessageContent `json:"message"`
}

type IGIdentity struct {
	ID string `json:"id"`
}

type MessageContent struct {
	MID         string `json:"mid"`
	Text        string `json:"text"`
	IsEcho      bool   `json:"is_echo"`
	Attachments []any  `json:"attachments"`
}

// WebhookTestPayload is the single-event shape the Meta dashboard sends when
// testing a subscription.
type WebhookTestPayload struct {
	Field string           `json:"field"`
	Value MessagingPayload `json:"value"`
}

type MediaAttachment struct {
	MediaType string `json:"media_type"`
	MediaID   string `json:"media_id"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
}

type LinkRequest struct {
	Token string `json:"token"`
	IGID  string `json:"ig_id"`
}
