package dto

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type Part struct {
	Text string `json:"text"`
}

// Message is one conversation turn, shaped like the provider's history.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

func NewMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// Text joins the message parts.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		out += p.Text
	}
	return out
}
