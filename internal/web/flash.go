package web

import "sync"

// Flash holds the most recent user alert until a page render takes it.
// It satisfies tasklist.Alerter.
type Flash struct {
	mu  sync.Mutex
	msg string
}

// NewFlash returns an empty Flash.
func NewFlash() *Flash {
	return &Flash{}
}

// Alert records msg, replacing any message not yet shown.
func (f *Flash) Alert(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msg = msg
}

// Take returns the pending message and clears it.
func (f *Flash) Take() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := f.msg
	f.msg = ""
	return msg
}
