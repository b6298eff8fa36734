package catalog

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when a catalog is built without models.
var ErrEmpty = errors.New("catalog: no models")

// KeyError reports an invalid key while building a catalog.
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("catalog: key %q: %s", e.Key, e.Reason)
}
