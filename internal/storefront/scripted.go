package storefront

import (
	"context"
	"slices"
	"sync"
	"time"
)

var _ UI = (*ScriptedUI)(nil)

// ScriptedUI answers dialogs with values fixed up front and records every
// notice. It binds request-style front ends (HTTP, tests) to Actions: the
// caller's request already carries the user's answers.
type ScriptedUI struct {
	// Confirmed is the answer to every confirm prompt.
	Confirmed bool
	// Customer is the submitted checkout form. Empty fields take the form
	// defaults. A nil Customer with DismissForm set dismisses the form.
	Customer    *Customer
	DismissForm bool
	// SkipLoading returns from Loading immediately.
	SkipLoading bool

	mu      sync.Mutex
	notices []Notice
	prompts []Prompt
}

// Notify records n.
func (u *ScriptedUI) Notify(_ context.Context, n Notice) {
	u.mu.Lock()
	u.notices = append(u.notices, n)
	u.mu.Unlock()
}

// Confirm records p and returns Confirmed.
func (u *ScriptedUI) Confirm(_ context.Context, p Prompt) (bool, error) {
	u.mu.Lock()
	u.prompts = append(u.prompts, p)
	u.mu.Unlock()
	return u.Confirmed, nil
}

// CustomerForm returns Customer merged over defaults.
func (u *ScriptedUI) CustomerForm(_ context.Context, defaults Customer) (*Customer, error) {
	if u.DismissForm {
		return nil, nil
	}
	c := defaults
	if u.Customer != nil {
		if u.Customer.Name != "" {
			c.Name = u.Customer.Name
		}
		if u.Customer.Email != "" {
			c.Email = u.Customer.Email
		}
		if u.Customer.Address != "" {
			c.Address = u.Customer.Address
		}
	}
	return &c, nil
}

// Loading blocks for d or until ctx is done.
func (u *ScriptedUI) Loading(ctx context.Context, _ string, d time.Duration) error {
	if u.SkipLoading || d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Notices returns the recorded notices in order.
func (u *ScriptedUI) Notices() []Notice {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.notices)
}

// Prompts returns the confirm prompts shown so far.
func (u *ScriptedUI) Prompts() []Prompt {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.prompts)
}
