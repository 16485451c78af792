package spirv

import "errors"

// KindOf reports the ErrorKind carried by err, looking through any
// context added while the error travelled up the parser.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// atOffset stamps the word offset of the failing instruction onto the
// innermost *Error of err that does not carry one yet.
func atOffset(err error, offset int) error {
	var e *Error
	if errors.As(err, &e) && e.Offset < 0 {
		e.Offset = offset
	}
	return err
}
