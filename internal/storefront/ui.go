package storefront

import (
	"context"
	"time"
)

// Level classifies a notice.
type Level string

// Notice levels.
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a message shown to the user. Toasts are transient and do not
// block.
type Notice struct {
	Level Level
	Title string
	Text  string
	Toast bool
}

// Prompt is a confirm/cancel question.
type Prompt struct {
	Title       string
	Text        string
	ConfirmText string
}

// Customer is the data collected by the checkout form.
type Customer struct {
	Name    string
	Email   string
	Address string
}

// UI is the dialog and notification capability used by Actions. Dismissing a
// dialog is reported as "not confirmed" (false, or a nil Customer), never as
// an error; errors mean the UI itself failed.
type UI interface {
	Notify(ctx context.Context, n Notice)
	Confirm(ctx context.Context, p Prompt) (bool, error)
	CustomerForm(ctx context.Context, defaults Customer) (*Customer, error)
	Loading(ctx context.Context, title string, d time.Duration) error
}
