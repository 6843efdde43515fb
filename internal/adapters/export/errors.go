package export

import "errors"

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no records to export")
