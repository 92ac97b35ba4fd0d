// Package validate provides input validation for the Stand API: free-text
// queries, cause and entity identifiers, and coordinates.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Get actual character count (not byte count)
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

var (
	causeIDPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)
	entityIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-.:]*$`)
)

// MaxQueryLength is the longest accepted search query, in characters.
const MaxQueryLength = 100

// SearchQuery validates a free-text search query:
// - Optional (can be empty)
// - Max 100 characters after trimming
// - No control characters
// The result is NFKC-normalized with runs of spaces collapsed.
func SearchQuery(q string) (string, error) {
	q, err := String(q, StringConstraints{
		MaxLength:  MaxQueryLength,
		AllowEmpty: true,
		TrimSpace:  true,
	})
	if err != nil {
		return "", err
	}
	if strings.IndexFunc(q, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control character", ErrInvalidCharacters)
	}
	return strings.Join(strings.Fields(norm.NFKC.String(q)), " "), nil
}

// CauseID validates a cause identifier such as "climate-action":
// - 1-64 characters
// - Letters, numbers, dash, underscore; must start with a letter or number
func CauseID(id string) (string, error) {
	return String(id, StringConstraints{
		MinLength:      1,
		MaxLength:      64,
		AllowedPattern: causeIDPattern,
		TrimSpace:      true,
	})
}

// EntityID validates a brand or business identifier:
// - 1-128 characters
// - Letters, numbers, dash, underscore, period, colon
func EntityID(id string) (string, error) {
	return String(id, StringConstraints{
		MinLength:      1,
		MaxLength:      128,
		AllowedPattern: entityIDPattern,
		TrimSpace:      true,
	})
}
