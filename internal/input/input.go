// Package input normalizes keyboard and voice events into game commands.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/deptsays/internal/model"
)

var keyCommands = map[string]model.Command{
	"up":    model.DirectionCommand(model.Up),
	"down":  model.DirectionCommand(model.Down),
	"left":  model.DirectionCommand(model.Left),
	"right": model.DirectionCommand(model.Right),
	"k":     model.DirectionCommand(model.Up),
	"j":     model.DirectionCommand(model.Down),
	"h":     model.DirectionCommand(model.Left),
	"l":     model.DirectionCommand(model.Right),
	"p":     model.TogglePauseCommand(),
	"P":     model.TogglePauseCommand(),
}

// FromKey maps a key name (as reported by Bubble Tea) to a command.
func FromKey(key string) (model.Command, bool) {
	cmd, ok := keyCommands[key]
	return cmd, ok
}

type vocabEntry struct {
	word string
	cmd  model.Command
}

// Checked in order; the first word contained in a transcript wins.
var vocabulary = []vocabEntry{
	{"pausa", model.TogglePauseCommand()},
	{"pause", model.TogglePauseCommand()},
	{"cima", model.DirectionCommand(model.Up)},
	{"baixo", model.DirectionCommand(model.Down)},
	{"esquerda", model.DirectionCommand(model.Left)},
	{"direita", model.DirectionCommand(model.Right)},
	{"up", model.DirectionCommand(model.Up)},
	{"down", model.DirectionCommand(model.Down)},
	{"left", model.DirectionCommand(model.Left)},
	{"right", model.DirectionCommand(model.Right)},
}

// ParseTranscript extracts a command from a recognized phrase.
func ParseTranscript(text string) (model.Command, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return model.Command{}, false
	}
	for _, v := range vocabulary {
		if strings.Contains(text, v.word) {
			return v.cmd, true
		}
	}
	return model.Command{}, false
}

// Transcript is one line heard by a voice source. A Transcript with Err set
// is the last value sent before the channel closes.
type Transcript struct {
	Text    string
	Command model.Command
	OK      bool
	Err     error
}

// LineSource reads transcripts, one per line, from an external recognizer.
type LineSource struct {
	r io.Reader
}

// NewLineSource wraps r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{r: r}
}

// Run scans lines until EOF, a read error, or ctx cancellation, sending each
// non-empty line to out. A read error is also sent as a final Transcript. The
// channel is closed when Run returns.
func (s *LineSource) Run(ctx context.Context, out chan<- Transcript) error {
	defer close(out)
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, ok := ParseTranscript(line)
		select {
		case out <- Transcript{Text: line, Command: cmd, OK: ok}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() == nil {
			sendErr(ctx, out, fmt.Errorf("read voice source: %w", err))
		}
		return err
	}
	return nil
}

func sendErr(ctx context.Context, out chan<- Transcript, err error) {
	select {
	case out <- Transcript{Err: err}:
	case <-ctx.Done():
	}
}

// Subscribe starts a LineSource in its own goroutine and returns the
// transcript channel with a cancel func that deregisters it.
func Subscribe(ctx context.Context, r io.Reader) (<-chan Transcript, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Transcript, 8)
	go func() {
		_ = NewLineSource(r).Run(ctx, ch)
	}()
	return ch, cancel
}

// SubscribePath opens path, usually a FIFO fed by a speech recognizer, and
// streams its lines like Subscribe. The file is closed on cancel, which also
// unblocks a pending read. An open failure is sent as a Transcript with Err
// set and closes the channel.
func SubscribePath(ctx context.Context, path string) (<-chan Transcript, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Transcript, 8)
	go func() {
		f, err := os.Open(path)
		if err != nil {
			sendErr(ctx, ch, fmt.Errorf("open voice source: %w", err))
			close(ch)
			return
		}
		stop := context.AfterFunc(ctx, func() {
			_ = f.Close()
		})
		defer func() {
			if stop() {
				_ = f.Close()
			}
		}()
		_ = NewLineSource(f).Run(ctx, ch)
	}()
	return ch, cancel
}
