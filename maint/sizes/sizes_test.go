package sizes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	cases := map[string]int64{
		"100b": 100,
		"1kb":  1_000,
		"8kb":  8_000,
		"45mb": 45_000_000,
		"4gb":  4_000_000_000,
		"2tb":  2_000_000_000_000,
	}
	for token, want := range cases {
		got, err := ParseSize(token)
		assert.NoError(t, err)
		assert.Equal(t, want, got, token)
	}
}

func TestParseSize_Invalid(t *testing.T) {
	for _, token := range []string{"", "kb", "10", "10KB", "1.5gb", "-4gb", "4pb", "4 gb"} {
		_, err := ParseSize(token)
		assert.Error(t, err, token)
		assert.IsType(t, &InvalidSizeError{}, err, token)
	}
}

func TestParseSize_Overflow(t *testing.T) {
	// counts whose byte value exceeds int64 must fail, not wrap around
	for _, token := range []string{"10000000tb", "99999999999gb", "99999999999999999999b"} {
		_, err := ParseSize(token)
		assert.IsType(t, &InvalidSizeError{}, err, token)
	}
	got, err := ParseSize("9223372036854775807b")
	assert.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), got)
}

func TestParseBoundary(t *testing.T) {
	cases := map[string]Boundary{
		"<=1kb":     {MinBytes: 0, MaxBytes: 1_000},
		"<1kb":      {MinBytes: 0, MaxBytes: 999},
		">=1kb":     {MinBytes: 1_000, MaxBytes: UnboundedUpper},
		">1kb":      {MinBytes: 1_001, MaxBytes: UnboundedUpper},
		"10kb-4gb":  {MinBytes: 10_000, MaxBytes: 4_000_000_000},
		"1mb-500mb": {MinBytes: 1_000_000, MaxBytes: 500_000_000},
		"5gb-5gb":   {MinBytes: 5_000_000_000, MaxBytes: 5_000_000_000},
	}
	for token, want := range cases {
		got, err := ParseBoundary(token)
		assert.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
}

func TestParseBoundary_Invalid(t *testing.T) {
	t.Run("BadPrefix", func(t *testing.T) {
		for _, token := range []string{"", "1kb", "=1kb", "~1kb"} {
			_, err := ParseBoundary(token)
			assert.IsType(t, &InvalidBoundaryError{}, err, token)
		}
	})
	t.Run("BadSizeInside", func(t *testing.T) {
		for _, token := range []string{"<1pb", ">=", "10xb-4gb", "10kb-4xb"} {
			_, err := ParseBoundary(token)
			assert.IsType(t, &InvalidSizeError{}, err, token)
		}
	})
	t.Run("ReversedRange", func(t *testing.T) {
		_, err := ParseBoundary("4gb-10kb")
		assert.IsType(t, &InvalidBoundaryError{}, err)
	})
}

func TestBoundaryContains(t *testing.T) {
	b, err := ParseBoundary("300b-1kb")
	assert.NoError(t, err)
	assert.False(t, b.Contains(299))
	assert.True(t, b.Contains(300))
	assert.True(t, b.Contains(1_000))
	assert.False(t, b.Contains(1_001))
}
