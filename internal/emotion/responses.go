package emotion

import (
	"fmt"
	"strings"
)

// DefaultFallback is shown for any label missing from the table.
const DefaultFallback = "Emotion detected."

var defaultMessages = map[Label]string{
	Happy:    "You are smiling. You look happy today",
	Sad:      "You look sad. Hope everything is okay",
	Angry:    "You seem upset. Take a deep breath",
	Fear:     "You look scared. Don't worry, you got this",
	Disgust:  "You look disgusted. Something bothering you?",
	Neutral:  "You look calm and neutral",
	Surprise: "Wow! You look surprised",
}

// Responses maps detected labels to user-facing messages.
// It is read-only after construction.
type Responses struct {
	messages map[Label]string
	fallback string
}

// NewResponses copies table and checks that every known label has a message.
// An empty fallback is replaced with DefaultFallback.
func NewResponses(table map[Label]string, fallback string) (*Responses, error) {
	var missing []string
	for _, l := range Labels {
		if strings.TrimSpace(table[l]) == "" {
			missing = append(missing, string(l))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("responses missing labels: %s", strings.Join(missing, ", "))
	}

	messages := make(map[Label]string, len(table))
	for l, msg := range table {
		messages[l] = msg
	}
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Responses{messages: messages, fallback: fallback}, nil
}

// DefaultResponses returns the stock message table.
func DefaultResponses() *Responses {
	r, err := NewResponses(defaultMessages, DefaultFallback)
	if err != nil {
		panic(err)
	}
	return r
}

// FromConfig builds a table from string keys, filling labels the overrides
// leave out with the stock messages. Unknown keys are rejected.
func FromConfig(overrides map[string]string, fallback string) (*Responses, error) {
	table := make(map[Label]string, NumClasses)
	for l, msg := range defaultMessages {
		table[l] = msg
	}
	for k, msg := range overrides {
		l := Label(k)
		if !l.Valid() {
			return nil, fmt.Errorf("unknown emotion label %q in responses", k)
		}
		table[l] = msg
	}
	return NewResponses(table, fallback)
}

// Select returns the message for label, or the fallback.
func (r *Responses) Select(label Label) string {
	if msg, ok := r.messages[label]; ok {
		return msg
	}
	return r.fallback
}
