package ingest

import (
	"bufio"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/grafana/jsonfrag/pkg/fragment"
)

// output keeps keys sorted so equal objects always serialize the same way.
var output = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// JSONLinesSink writes each object as one line of compact JSON. It is not safe
// for concurrent use; a Processor writes from a single goroutine.
type JSONLinesSink struct {
	w *bufio.Writer
}

// NewJSONLinesSink returns a sink buffering writes to w. Call Flush when done.
func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	return &JSONLinesSink{w: bufio.NewWriter(w)}
}

func (s *JSONLinesSink) Write(obj fragment.Object) error {
	b, err := output.Marshal(obj)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (s *JSONLinesSink) Flush() error {
	return s.w.Flush()
}
