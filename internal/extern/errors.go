package extern

import "errors"

// ErrRedefined is returned by Define when the name already has a queue.
var ErrRedefined = errors.New("already defined")
