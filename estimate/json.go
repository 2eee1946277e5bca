// json.go exports the result tables for downstream tooling. Plotting and
// reporting stay outside this module; they consume this document.

package estimate

import (
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON writes the result as one indented JSON document: likelihood,
// parameter order, the three tables and the notices. Draw matrices are
// deliberately excluded; callers that need raw draws read Result.Chains
// directly.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}
