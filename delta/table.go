package delta

import (
	"fmt"
	"slices"

	"github.com/metrico/deltamaint/delta/dataset"
)

// Table is the handle every maintenance operation takes explicitly. The
// engine behind it owns the transaction log, file layout and merge
// execution; each call here runs against one fresh snapshot.
type Table interface {
	// AddFiles enumerates the manifest of the current snapshot.
	AddFiles() ([]AddFile, error)
	// Version returns the current table version.
	Version() (int64, error)
	// ReadAll returns the full current contents.
	ReadAll() (*dataset.Dataset, error)
	// Merge executes spec atomically: either the whole merge commits as one
	// new version, or none of it does. Conflict and I/O failures surface
	// unmodified.
	Merge(spec MergeSpec) error
}

// MissingColumnError reports required columns absent from a row set,
// carrying the actual column set for diagnosis.
type MissingColumnError struct {
	Have []string
	Want []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("the table has these columns %v, but these columns are required %v", e.Have, e.Want)
}

// RequireColumns fails when any of want is missing from have.
func RequireColumns(have []string, want []string) error {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return &MissingColumnError{Have: have, Want: want}
		}
	}
	return nil
}
