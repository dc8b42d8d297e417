package cli

import (
	"context"
	"fmt"
	"io"
)

// writerClipboard stands in for the system clipboard: the copied text is
// printed so it can be piped elsewhere.
type writerClipboard struct {
	w     io.Writer
	quiet bool
}

func (c *writerClipboard) Copy(_ context.Context, text string) error {
	if c.quiet {
		return nil
	}
	_, err := fmt.Fprintln(c.w, text)
	return err
}

type writerNotifier struct {
	w io.Writer
}

func (n *writerNotifier) Notify(_ context.Context, message string) {
	fmt.Fprintln(n.w, message)
}
