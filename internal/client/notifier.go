package client

import (
	"fmt"
	"io"
)

// WriterNotifier prints notifications, errors to Err and the rest to Out.
type WriterNotifier struct {
	Out io.Writer
	Err io.Writer
}

func (n WriterNotifier) Success(msg string) { fmt.Fprintln(n.Out, "✔ "+msg) }
func (n WriterNotifier) Error(msg string)   { fmt.Fprintln(n.Err, "✖ "+msg) }
