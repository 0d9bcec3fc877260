// Package obslog carries the "optional structured logger, defaulting to a
// discard sink when unset" pattern every serving-path component uses:
// constructor-injected *slog.Logger rather than a package-global one,
// matching mohammed-shakir/h3-spatial-cache's cache/executor constructors
// (they take a *slog.Logger parameter instead of calling slog.Default()).
package obslog

import "log/slog"

var discard = slog.New(slog.DiscardHandler)

// Or returns l if non-nil, otherwise a logger that drops every record.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return discard
}
