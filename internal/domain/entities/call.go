package entities

import "strings"

// Turn author roles. Transcripts may carry arbitrary casing; comparisons
// are case-insensitive.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one authored utterance within a call. Its position is its
// 0-based index in the call's dialogue. Immutable once loaded.
type Turn struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// IsAssistant reports whether the turn was authored by the assistant,
// the only rateable role.
func (t Turn) IsAssistant() bool {
	return strings.EqualFold(t.Author, RoleAssistant)
}

// Call is one recorded multi-turn dialogue. Immutable once loaded;
// owned by the transcript source for the session's lifetime.
type Call struct {
	ID       string `json:"callId"`
	Dialogue []Turn `json:"dialogue"`
}

// Clone returns a deep copy so callers never alias the source's turns.
func (c Call) Clone() Call {
	dialogue := make([]Turn, len(c.Dialogue))
	copy(dialogue, c.Dialogue)
	return Call{ID: c.ID, Dialogue: dialogue}
}
