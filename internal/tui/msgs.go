package tui

import "sync"

// opDoneMsg reports the completion of a synchronizer operation.
type opDoneMsg struct {
	op  string
	err error
}

// Alerts collects user alerts raised by the synchronizer from command
// goroutines. It satisfies tasklist.Alerter.
type Alerts struct {
	mu  sync.Mutex
	msg string
}

// NewAlerts returns an empty Alerts.
func NewAlerts() *Alerts {
	return &Alerts{}
}

// Alert records msg.
func (a *Alerts) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msg = msg
}

func (a *Alerts) take() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	msg := a.msg
	a.msg = ""
	return msg
}
