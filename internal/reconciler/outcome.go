package reconciler

import "fmt"

// Outcome is the result class of one poll.
type Outcome int

const (
	// OutcomeOK means fresh data was fetched and stored.
	OutcomeOK Outcome = iota
	// OutcomeStale means the fetch failed transiently and the previous list
	// is returned unchanged. Polling should continue.
	OutcomeStale
	// OutcomeNotFound means the resource, or the parent of the polled list,
	// no longer exists. Polling should stop and the caller may drop the row
	// from a higher level list.
	OutcomeNotFound
	// OutcomeError means the fetch failed in a way retrying will not fix.
	// Polling should stop and the message be shown.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeStale:
		return "stale"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Continue reports whether the caller should keep polling.
func (o Outcome) Continue() bool {
	return o == OutcomeOK || o == OutcomeStale
}
