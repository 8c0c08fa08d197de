// Package notify carries transient success and error messages to the user.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Kinds of notice.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notifier is fire-and-forget; callers never inspect a result.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// Nop discards every notice.
type Nop struct{}

func (Nop) NotifySuccess(string) {}
func (Nop) NotifyError(string)   {}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) NotifySuccess(message string) {
	for _, n := range m {
		if n != nil {
			n.NotifySuccess(message)
		}
	}
}

func (m Multi) NotifyError(message string) {
	for _, n := range m {
		if n != nil {
			n.NotifyError(message)
		}
	}
}

// Log writes notices to a zap logger.
type Log struct {
	Logger *zap.Logger
}

func (l Log) NotifySuccess(message string) {
	l.logger().Info("notice", zap.String("kind", KindSuccess), zap.String("message", message))
}

func (l Log) NotifyError(message string) {
	l.logger().Warn("notice", zap.String("kind", KindError), zap.String("message", message))
}

func (l Log) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Notice is one recorded message.
type Notice struct {
	Kind    string
	Message string
}

// Flash collects notices until they are drained into the next rendered
// page.
type Flash struct {
	mu      sync.Mutex
	notices []Notice
}

func (f *Flash) NotifySuccess(message string) { f.add(KindSuccess, message) }
func (f *Flash) NotifyError(message string)   { f.add(KindError, message) }

func (f *Flash) add(kind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, Notice{Kind: kind, Message: message})
}

// Drain returns and clears the collected notices.
func (f *Flash) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	return out
}
