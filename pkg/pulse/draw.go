package pulse

import (
	"fmt"
	"io"
	"strings"
)

// DrawOpts carries the optional knobs accepted by Draw.
type DrawOpts struct {
	// Width is the number of timeline cells per channel row. Defaults to 72.
	Width int
	// HideLegend drops the glyph legend under the timeline.
	HideLegend bool
}

// Glyphs used by the text renderer. One cell covers one or more dt ticks
// depending on the schedule length; denser instructions win the cell.
const (
	glyphIdle    = '.'
	glyphPlay    = '#'
	glyphDelay   = '-'
	glyphAcquire = '='
	glyphFrame   = '|'
)

// Draw renders the schedule as a per-channel text timeline. Each row is one
// channel; time runs left to right, scaled so the whole schedule fits the
// configured width.
func (s *Schedule) Draw(w io.Writer, opts *DrawOpts) error {
	if opts == nil {
		opts = &DrawOpts{}
	}
	width := opts.Width
	if width <= 0 {
		width = 72
	}
	duration := s.Duration()
	if _, err := fmt.Fprintf(w, "%s  (%d instructions, %d dt)\n", s.name, len(s.insts), duration); err != nil {
		return err
	}
	channels := s.Channels()
	if len(channels) == 0 {
		_, err := fmt.Fprintln(w, "  <empty schedule>")
		return err
	}
	ticksPerCell := duration / int64(width)
	if duration%int64(width) != 0 || ticksPerCell == 0 {
		ticksPerCell++
	}

	rows := make(map[Channel][]byte, len(channels))
	for _, ch := range channels {
		row := make([]byte, width)
		for i := range row {
			row[i] = glyphIdle
		}
		rows[ch] = row
	}
	for _, si := range s.Instructions() {
		glyph := instructionGlyph(si.Instruction)
		for _, ch := range si.Instruction.Channels() {
			row, ok := rows[ch]
			if !ok {
				continue
			}
			paint(row, si, glyph, ticksPerCell)
		}
	}

	nameWidth := 0
	for _, ch := range channels {
		if n := len(ch.Name()); n > nameWidth {
			nameWidth = n
		}
	}
	for _, ch := range channels {
		if _, err := fmt.Fprintf(w, "%-*s %s\n", nameWidth, ch.Name(), rows[ch]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s 0%s%d dt\n", strings.Repeat(" ", nameWidth),
		strings.Repeat(" ", maxInt(width-len(fmt.Sprint(duration))-4, 1)), duration); err != nil {
		return err
	}
	if !opts.HideLegend {
		if _, err := fmt.Fprintf(w, "legend: %c play  %c delay  %c acquire  %c frame change\n",
			glyphPlay, glyphDelay, glyphAcquire, glyphFrame); err != nil {
			return err
		}
	}
	return nil
}

func instructionGlyph(instr Instruction) byte {
	switch instr.(type) {
	case *Play:
		return glyphPlay
	case *Delay:
		return glyphDelay
	case *Acquire:
		return glyphAcquire
	default:
		return glyphFrame
	}
}

// paint fills the cells covered by the instruction. Frame changes mark a
// single cell and never overwrite a busier glyph.
func paint(row []byte, si ScheduledInstruction, glyph byte, ticksPerCell int64) {
	first := si.Start / ticksPerCell
	last := first
	if dur := si.Instruction.Duration(); dur > 0 {
		last = (si.Stop() - 1) / ticksPerCell
	}
	for i := first; i <= last && i < int64(len(row)); i++ {
		if glyph == glyphFrame && row[i] != glyphIdle && row[i] != glyphDelay {
			continue
		}
		row[i] = glyph
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
