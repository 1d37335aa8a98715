package domain

// Message is the inbound chat message a host hands to command handlers as
// the first dispatch argument.
type Message struct {
	ID       int
	ChatID   int64
	Username string
	Text     string
}

type Action string

const (
	Typing Action = "typing"
)

type ModelResponse struct {
	Response string
	Metadata ResponseMetadata
}

type ResponseMetadata struct {
	Model            string
	CompletionTokens int
	TotalTokens      int
}
