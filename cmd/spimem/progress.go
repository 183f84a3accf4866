package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/moffa90/go-spimem/worker"
)

// progressPrinter renders a single status line, redrawn at most every
// interval.
type progressPrinter struct {
	w        io.Writer
	interval time.Duration
	last     time.Time
	active   bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, interval: 100 * time.Millisecond}
}

func (p *progressPrinter) update(pr worker.Progress) {
	now := time.Now()
	if p.active && pr.Offset < pr.Total && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now
	p.active = true

	rate := ""
	if secs := pr.ElapsedTime.Seconds(); secs > 0 {
		rate = fmt.Sprintf(" %s/s", humanize.IBytes(uint64(float64(pr.Offset)/secs)))
	}
	fmt.Fprintf(p.w, "\r%-7s %5.1f%% %s / %s%s   ",
		pr.Mode, pr.Percentage,
		humanize.IBytes(uint64(pr.Offset)), humanize.IBytes(uint64(pr.Total)), rate)
}

// finish ends the status line, if one was drawn.
func (p *progressPrinter) finish() {
	if p.active {
		fmt.Fprintln(p.w)
		p.active = false
	}
}
