package notifier

import (
	"context"
	"fmt"
	"io"
)

// Notifier delivers text reports.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// ConsoleNotifier writes reports to a writer, usually stdout.
type ConsoleNotifier struct {
	W io.Writer
}

func NewConsoleNotifier(w io.Writer) *ConsoleNotifier { return &ConsoleNotifier{W: w} }

func (c *ConsoleNotifier) Send(text string) error {
	_, err := fmt.Fprintln(c.W, text)
	return err
}

func (c *ConsoleNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return c.Send(text)
}
