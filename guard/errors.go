package guard

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/infrequent_go/callsite"
)

var ErrFrequencyExceeded = errors.New("call site frequency exceeded")

// FrequencyExceeded is the panic value raised when a call site is hit more
// often than its limit allows.
type FrequencyExceeded struct {
	Limit uint64
	Hits  uint64
	Site  callsite.Fingerprint
}

func (e *FrequencyExceeded) Error() string {
	return fmt.Sprintf("%s: %s hit %d times, at most %d allowed", ErrFrequencyExceeded, e.Site, e.Hits, e.Limit)
}

func (e *FrequencyExceeded) Unwrap() error {
	return ErrFrequencyExceeded
}

// AsFrequencyExceeded inspects a recovered panic value.
func AsFrequencyExceeded(recovered any) (*FrequencyExceeded, bool) {
	err, ok := recovered.(error)
	if !ok {
		return nil, false
	}
	var fe *FrequencyExceeded
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
