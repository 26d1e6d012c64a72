// Package sizes parses human readable file size tokens ("4gb") and size
// range boundaries ("<=1kb", "10kb-4gb") into byte counts.
package sizes

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	kilobyte int64 = 1_000
	megabyte int64 = 1_000_000
	gigabyte int64 = 1_000_000_000
	terabyte int64 = 1_000_000_000_000
)

// UnboundedUpper stands in for "no upper bound" in a parsed boundary.
// Callers must not rely on real file sizes at or above this value.
const UnboundedUpper int64 = 10 * terabyte

// Boundary is an inclusive byte range derived from a boundary token.
type Boundary struct {
	MinBytes int64
	MaxBytes int64
}

type InvalidSizeError struct {
	Token string
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("%q cannot be parsed. Valid units are b, kb, mb, gb, or tb. 45b, 8kb and 4gb are valid examples", e.Token)
}

type InvalidBoundaryError struct {
	Token string
}

func (e *InvalidBoundaryError) Error() string {
	return fmt.Sprintf("%q cannot be parsed. Valid prefixes are <, <=, > and >=. Two sizes can be delimited with a dash. Valid examples include <10kb and 10kb-5gb", e.Token)
}

var sizeToken = regexp.MustCompile(`^([0-9]+)(b|kb|mb|gb|tb)$`)

// ParseSize converts a token like "100b" or "4gb" to bytes. Multipliers are
// decimal, not binary.
func ParseSize(token string) (int64, error) {
	m := sizeToken.FindStringSubmatch(token)
	if m == nil {
		return 0, &InvalidSizeError{Token: token}
	}
	num, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, &InvalidSizeError{Token: token}
	}
	var mult int64
	switch m[2] {
	case "b":
		mult = 1
	case "kb":
		mult = kilobyte
	case "mb":
		mult = megabyte
	case "gb":
		mult = gigabyte
	case "tb":
		mult = terabyte
	}
	if num > math.MaxInt64/mult {
		return 0, &InvalidSizeError{Token: token}
	}
	return num * mult, nil
}

// ParseBoundary converts a boundary token to an inclusive byte range.
// Prefixes are checked in the order <=, <, >=, >; a dash delimits a
// closed range between two size tokens.
func ParseBoundary(token string) (Boundary, error) {
	switch {
	case strings.HasPrefix(token, "<="):
		max, err := ParseSize(strings.TrimPrefix(token, "<="))
		if err != nil {
			return Boundary{}, err
		}
		return Boundary{MinBytes: 0, MaxBytes: max}, nil
	case strings.HasPrefix(token, "<"):
		max, err := ParseSize(strings.TrimPrefix(token, "<"))
		if err != nil {
			return Boundary{}, err
		}
		return Boundary{MinBytes: 0, MaxBytes: max - 1}, nil
	case strings.HasPrefix(token, ">="):
		min, err := ParseSize(strings.TrimPrefix(token, ">="))
		if err != nil {
			return Boundary{}, err
		}
		return Boundary{MinBytes: min, MaxBytes: UnboundedUpper}, nil
	case strings.HasPrefix(token, ">"):
		min, err := ParseSize(strings.TrimPrefix(token, ">"))
		if err != nil {
			return Boundary{}, err
		}
		return Boundary{MinBytes: min + 1, MaxBytes: UnboundedUpper}, nil
	case strings.Contains(token, "-"):
		first, second, _ := strings.Cut(token, "-")
		min, err := ParseSize(first)
		if err != nil {
			return Boundary{}, err
		}
		max, err := ParseSize(second)
		if err != nil {
			return Boundary{}, err
		}
		if min > max {
			return Boundary{}, &InvalidBoundaryError{Token: token}
		}
		return Boundary{MinBytes: min, MaxBytes: max}, nil
	}
	return Boundary{}, &InvalidBoundaryError{Token: token}
}

// Contains reports whether a file of the given size falls in the boundary,
// inclusive on both ends.
func (b Boundary) Contains(sizeBytes int64) bool {
	return sizeBytes >= b.MinBytes && sizeBytes <= b.MaxBytes
}
