// Package dialogue defines the read-only prior-turn history contract
// consumed by the uncertainty scorer and the plan builder. The chat session
// itself (storage, summarization) lives outside this core.
package dialogue

// Role is who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single prior message in the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Context is the dialogue state visible to the engine for one request.
type Context struct {
	// History holds prior turns, oldest first. May be empty.
	History []Turn `json:"history"`

	// ProjectPath is the workspace root the conversation is about, when known.
	ProjectPath string `json:"project_path,omitempty"`
}

// Empty reports whether there is no usable prior history.
func (c Context) Empty() bool {
	return len(c.History) == 0
}

// Provider supplies the dialogue context for a session.
type Provider interface {
	// DialogueContext returns the current context. Implementations must
	// treat the returned value as a snapshot; the engine never mutates it.
	DialogueContext() Context
}
