package translator

const (
	RoleSystem = "system"
	RoleUser   = "user"

	persona        = "You are a professional translator."
	glossaryPrefix = "Use the following glossary for reference:\n"
)

// Message is a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildMessages assembles the chat for one fragment: the translator persona,
// the glossary as a second system message when there is one, and the
// instructions followed by a blank line and the fragment.
func BuildMessages(fragment, instructions, glossary string) []Message {
	msgs := []Message{{Role: RoleSystem, Content: persona}}
	if glossary != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: glossaryPrefix + glossary})
	}
	return append(msgs, Message{Role: RoleUser, Content: instructions + "\n\n" + fragment})
}
