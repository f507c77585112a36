package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/forPelevin/timejump/internal/domain/timecode"
	"github.com/forPelevin/timejump/internal/types"
	"github.com/forPelevin/timejump/internal/usecase"
)

type overlay interface {
	Toggle(ctx context.Context) (bool, error)
	Close()
	Submit(ctx context.Context, raw string) (types.JumpResult, error)
	Visible() bool
	Input() string
	Status() string
}

const (
	cmdToggle = "/toggle"
	cmdEsc    = "/esc"
	cmdQuit   = "/quit"
)

// interact drives the overlay from line input until /quit, EOF or ctx is done.
// Each line runs to completion before the next one is read.
func interact(ctx context.Context, o overlay, in io.Reader, out io.Writer, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	sc := bufio.NewScanner(in)
	fmt.Fprintln(out, "Enter or /toggle opens the overlay, /quit exits.")

	for {
		if o.Visible() {
			fmt.Fprintf(out, "Jump to [%s]: ", o.Input())
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == cmdQuit:
			return nil
		case line == cmdToggle || (line == "" && !o.Visible()):
			if err := step(ctx, timeout, func(ctx context.Context) error {
				_, err := o.Toggle(ctx)
				return err
			}); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			if !o.Visible() {
				fmt.Fprintln(out, "closed")
			}
		case line == cmdEsc:
			o.Close()
			fmt.Fprintln(out, "closed")
		case !o.Visible():
			fmt.Fprintln(out, "overlay is closed; press Enter or type /toggle")
		default:
			raw := line
			if raw == "" {
				raw = o.Input()
			}
			var res types.JumpResult
			err := step(ctx, timeout, func(ctx context.Context) error {
				var err error
				res, err = o.Submit(ctx, raw)
				return err
			})
			switch {
			case errors.Is(err, usecase.ErrInvalidTimecode), errors.Is(err, usecase.ErrNoVideo):
				fmt.Fprintln(out, o.Status())
			case err != nil:
				fmt.Fprintf(out, "error: %s\n", o.Status())
			default:
				fmt.Fprintf(out, "jumped to %s\n", timecode.Format(res.Seconds))
			}
		}
	}
}

func step(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
