package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forPelevin/timejump/internal/domain/timecode"
	"github.com/forPelevin/timejump/internal/pipeline"
	"github.com/forPelevin/timejump/internal/usecase"
)

func newJumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jump <url> <timecode>",
		Short: "Seek the page's main video to a timecode",
		Long: `Open the page, pick its most relevant video and seek it.

Timecodes: 90, 1:23, 01:02:03, 1h2m3s, 2m, 45s.
The playing video wins; otherwise the biggest visible one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := timecode.Parse(args[1]); err != nil {
				return errors.New(usecase.Message(usecase.ErrInvalidTimecode))
			}

			cfg, log, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := withTimeout(cmd)
			defer cancel()

			res, err := pipeline.Run(ctx, cfg, args[1])
			if errors.Is(err, usecase.ErrNoVideo) || errors.Is(err, usecase.ErrInvalidTimecode) {
				return errors.New(usecase.Message(err))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "jumped to %s (%.3fs) on video #%d\n",
				timecode.Format(res.Seconds), res.Applied, res.Video.Index)
			return nil
		},
	}
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open a page and read timecodes from stdin",
		Long: `Open a page and drive the jump overlay from stdin.

While hidden, an empty line or /toggle opens the overlay.
While open, a line is submitted (empty = the remembered value),
/esc or /toggle closes it, /quit exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			// Someone is watching the page unless they asked otherwise.
			if !cmd.Flags().Changed("headless") {
				cfg.Headless = false
			}

			s, err := pipeline.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			timeout, _ := cmd.Flags().GetDuration("timeout")
			return interact(cmd.Context(), s.Overlay, cmd.InOrStdin(), cmd.OutOrStdout(), timeout)
		},
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <timecode>...",
		Short: "Print how timecodes parse",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			bad := 0
			for _, a := range args {
				sec, err := timecode.Parse(a)
				if err != nil {
					bad++
					fmt.Fprintf(w, "%s\tinvalid\t\n", a)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", a, sec, timecode.Format(sec))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if bad > 0 {
				return fmt.Errorf("%d invalid timecode(s)", bad)
			}
			return nil
		},
	}
}

func newVideosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "videos <url>",
		Short: "List the page's videos and the one a jump would pick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := withTimeout(cmd)
			defer cancel()

			snap, cands, err := pipeline.Inspect(ctx, cfg)
			if err != nil {
				return err
			}
			return printCandidates(cmd, snap.URL, cands)
		},
	}
}

func printCandidates(cmd *cobra.Command, pageURL string, cands []pipeline.Candidate) error {
	out := cmd.OutOrStdout()
	if len(cands) == 0 {
		return errors.New(usecase.Message(usecase.ErrNoVideo))
	}
	fmt.Fprintf(out, "%s\n", pageURL)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\t#\tSIZE\tPLAYING\tVISIBLE\tSCORE\tPOSITION\tDURATION\tSRC")
	for _, c := range cands {
		mark := ""
		if c.Selected {
			mark = "*"
		}
		v := c.Video
		dur := "?"
		if v.KnownDuration() {
			dur = timecode.Format(int(v.Duration))
		}
		fmt.Fprintf(w, "%s\t%d\t%.0fx%.0f\t%v\t%v\t%s\t%s\t%s\t%s\n",
			mark, v.Index, v.Rect.Width, v.Rect.Height, c.Playing, c.Visible,
			strconv.FormatFloat(c.Score, 'f', 0, 64), timecode.Format(int(v.Position)), dur, v.Src)
	}
	return w.Flush()
}
