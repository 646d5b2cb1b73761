package conversation

import "time"

// Speaker is deliberately neutral. Mapping to any chat-API role
// vocabulary happens at the responder boundary, not here.
type Speaker string

const (
	User    Speaker = "user"
	Advisor Speaker = "advisor"
)

type Turn struct {
	Speaker   Speaker
	Text      string
	Timestamp time.Time
}

// Log is an append-only transcript. Turns are never edited or removed.
type Log struct {
	turns []Turn
}

func (l *Log) Append(speaker Speaker, text string) {
	l.turns = append(l.turns, Turn{
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now(),
	})
}

func (l *Log) Len() int {
	return len(l.turns)
}

// Turns returns a copy; callers cannot reorder or mutate the log.
func (l *Log) Turns() []Turn {
	return append([]Turn(nil), l.turns...)
}
