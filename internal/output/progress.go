package output

import (
	"fmt"
	"io"
)

// Progress prints a single updating download line.
type Progress struct {
	w    io.Writer
	last float64
	seen bool
}

// NewProgress creates a progress line on w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, last: -1}
}

// Update redraws the line. Repeated percentages are skipped.
func (p *Progress) Update(percent float64) {
	if percent == p.last {
		return
	}
	p.last = percent
	p.seen = true
	_, _ = fmt.Fprintf(p.w, "\rDownloading... %6.2f%%", percent)
}

// Done terminates the line.
func (p *Progress) Done() {
	if p.seen {
		_, _ = fmt.Fprintln(p.w)
	}
	_, _ = fmt.Fprintln(p.w, "Download complete.")
}
