package history

// Message roles, matching the wire format of the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversational turn. Messages are immutable once created and
// their order in a transcript is chronological.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
