package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders command results as indented JSON, one document
// per invocation.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
