package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/hupe1980/slicescan"
	"github.com/hupe1980/slicescan/status"
)

var (
	red    = color.New(color.FgRed, color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

func paint(c *color.Color, s string) string {
	if noColor {
		return s
	}
	return c.Sprint(s)
}

func stateColor(st slicescan.State) *color.Color {
	switch st {
	case slicescan.StateExhausted:
		return green
	case slicescan.StateFailed:
		return red
	case slicescan.StateCancelled:
		return yellow
	default:
		return cyan
	}
}

func printReport(w io.Writer, r slicescan.Report, withStatus bool) error {
	fmt.Fprintf(w, "scan %s: %d slices, %d rows in %s\n",
		paint(cyan, r.ScanID), len(r.Slices), r.Rows, r.Duration.Round(time.Millisecond))

	for _, op := range r.Operators {
		fmt.Fprintf(w, "  %-12s %s %s pages=%d rows=%d\n",
			paint(stateColor(op.State), op.State.String()),
			op.Slice.String(),
			paint(faint, op.ID),
			op.Pages,
			op.Rows,
		)
		if op.Err != nil && !slicescan.IsCancelled(op.Err) {
			fmt.Fprintf(w, "    %s\n", paint(red, op.Err.Error()))
		}
		if withStatus {
			if err := printStatus(w, op.Status); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(w, "summary:")
	if err := printStatus(w, r.Summary); err != nil {
		return err
	}
	if r.ArchiveKey != "" {
		fmt.Fprintf(w, "archived: %s\n", r.ArchiveKey)
	}
	return nil
}

func printStatus(w io.Writer, s status.Status) error {
	text, err := status.ToText(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", text)
	return err
}
