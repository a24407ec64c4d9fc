package models

// Sender identifies who produced a chat entry
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatEntry is one turn in the transcript.
// Entries are values; nothing mutates them after they are appended.
type ChatEntry struct {
	Text       string
	Sender     Sender
	IsRichText bool
}

// UserEntry creates a plain user entry
func UserEntry(text string) ChatEntry {
	return ChatEntry{Text: text, Sender: SenderUser}
}

// BotEntry creates a bot entry
func BotEntry(text string, rich bool) ChatEntry {
	return ChatEntry{Text: text, Sender: SenderBot, IsRichText: rich}
}

// Transcript is an append-only, ordered list of chat entries
type Transcript struct {
	entries []ChatEntry
}

// NewTranscript creates a transcript seeded with the given entries
func NewTranscript(initial ...ChatEntry) *Transcript {
	t := &Transcript{entries: make([]ChatEntry, 0, len(initial)+8)}
	t.entries = append(t.entries, initial...)
	return t
}

// Append adds an entry at the end
func (t *Transcript) Append(e ChatEntry) {
	t.entries = append(t.entries, e)
}

// Len returns the number of entries
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in display order
func (t *Transcript) Entries() []ChatEntry {
	out := make([]ChatEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Last returns the newest entry
func (t *Transcript) Last() (ChatEntry, bool) {
	if len(t.entries) == 0 {
		return ChatEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
