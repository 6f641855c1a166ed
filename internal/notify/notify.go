/**
 * @description
 * This package defines the user-visible notification surface. The core
 * packages report outcomes ("Login successful!", server rejection messages)
 * through a Notifier instead of logging, so the front end decides how to
 * present them and tests can record them.
 */

package notify

import "log/slog"

// Notifier receives user-visible outcome messages.
type Notifier interface {
	// Success reports a successful user action.
	Success(msg string)
	// Failure reports a failed user action. Messages originating from the
	// server are passed through verbatim.
	Failure(msg string)
}

// LogNotifier writes notifications to a structured logger. It is the default
// sink when no interactive front end is attached.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Success(msg string) {
	n.Logger.Info("notification", "kind", "success", "message", msg)
}

func (n LogNotifier) Failure(msg string) {
	n.Logger.Warn("notification", "kind", "failure", "message", msg)
}
