package brightness

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFormat is wrapped by every error returned from Parse.
var ErrInvalidFormat = errors.New("invalid update format")

// ParseError describes a malformed update expression.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid update %q: %s (expected <digits>[%%][+|-])", e.Text, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidFormat.
func (e *ParseError) Unwrap() error {
	return ErrInvalidFormat
}

// Parse reads an update expression of the form <digits>[%][+|-].
//
//	"50"   Direct(50)
//	"50+"  Delta(50)     "50-"  Delta(-50)
//	"50%"  Absolute(50)
//	"50%+" Relative(50)  "50%-" Relative(-50)
//
// The sign is only accepted as the final character, so a negative
// magnitude such as "-50" is rejected.
func Parse(text string) (Update, error) {
	i := 0
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i == 0 {
		if text != "" && isSign(text[0]) {
			return Update{}, invalid(text, "sign must follow the value")
		}
		return Update{}, invalid(text, "missing value")
	}

	magnitude, err := strconv.ParseInt(text[:i], 10, 64)
	if err != nil {
		return Update{}, invalid(text, "value out of range")
	}

	percent := false
	if i < len(text) && text[i] == '%' {
		percent = true
		i++
	}

	var sign byte
	if i < len(text) && isSign(text[i]) {
		sign = text[i]
		i++
	}

	if i != len(text) {
		return Update{}, invalid(text, fmt.Sprintf("unexpected %q at offset %d", text[i], i))
	}

	if sign == '-' {
		magnitude = -magnitude
	}

	switch {
	case !percent && sign == 0:
		return Direct(magnitude), nil
	case !percent:
		return Delta(magnitude), nil
	case sign == 0:
		return Absolute(magnitude), nil
	default:
		return Relative(magnitude), nil
	}
}

func invalid(text, reason string) *ParseError {
	return &ParseError{Text: text, Reason: reason}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSign(c byte) bool { return c == '+' || c == '-' }
