// Package game holds what every game package shares: the error taxonomy,
// the outbound notification boundary and the command catalog.
package game

// Game describes a chat command exposed by one of the games.
type Game interface {
	// Name returns the display name (e.g. "Tài xỉu").
	Name() string

	// Command returns the command without the slash (e.g. "taixiu").
	Command() string

	// Usage returns the argument synopsis shown in /help.
	Usage() string

	// Description returns a one-line description.
	Description() string
}

// Notifier delivers messages that are not replies to an inbound update,
// such as a quiz timing out. Delivery is best effort.
type Notifier interface {
	Notify(chatID int64, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(chatID int64, text string)

// Notify calls f.
func (f NotifierFunc) Notify(chatID int64, text string) { f(chatID, text) }

// Info is a static Game implementation.
type Info struct {
	GameName    string
	GameCommand string
	GameUsage   string
	GameDesc    string
}

func (i Info) Name() string        { return i.GameName }
func (i Info) Command() string     { return i.GameCommand }
func (i Info) Usage() string       { return i.GameUsage }
func (i Info) Description() string { return i.GameDesc }
