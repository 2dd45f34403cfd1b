package browser

import "github.com/pkg/errors"

// ErrSessionUnavailable marks transport-level failures: the browser process
// is unreachable, crashed, or was never started. These are the only browser
// errors that propagate; a missing element is a boolean result, not an error.
var ErrSessionUnavailable = errors.New("browser session unavailable")
