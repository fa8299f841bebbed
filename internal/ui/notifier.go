package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Notifier carries controller change notifications into a running program.
// Notify never blocks: it is called from the event loop itself as well as
// from save goroutines, and bursts collapse into one re-render.
type Notifier struct {
	pending chan struct{}
}

// NewNotifier creates a notifier with no program attached.
func NewNotifier() *Notifier {
	return &Notifier{pending: make(chan struct{}, 1)}
}

// Notify records that the controller changed.
func (n *Notifier) Notify() {
	select {
	case n.pending <- struct{}{}:
	default:
	}
}

// forward delivers notifications to p until ctx ends.
func (n *Notifier) forward(ctx context.Context, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.pending:
			p.Send(controllerChangedMsg{})
		}
	}
}
