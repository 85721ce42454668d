package drawer

import (
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// SVGRenderer draws the schedule as an SVG timeline: one horizontal lane
// per channel, boxes for timed instructions, the waveform envelope overlaid
// on plays, vertical markers for frame changes.
type SVGRenderer struct {
	// Width is the document width in pixels. Defaults to 900.
	Width int
	// LaneHeight is the per-channel lane height in pixels. Defaults to 56.
	LaneHeight int
}

// NewSVGRenderer creates an SVG renderer with default geometry.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{}
}

// RenderFile renders sched with r into a freshly created file.
func RenderFile(r Renderer, sched *pulse.Schedule, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", path)
	}
	defer file.Close()
	return r.Render(sched, file)
}

const labelWidth = 72

type svgBox struct {
	X, Y, W, H float64
	Fill       string
	Opacity    string
	Title      string
}

type svgMarker struct {
	X      float64
	Y1, Y2 float64
	Title  string
}

type svgLane struct {
	Label    string
	Top, Mid float64
	Color    string
	Boxes    []svgBox
	Markers  []svgMarker
	Paths    []string
}

type svgTick struct {
	X     float64
	Label string
}

type svgDoc struct {
	Width, Height float64
	Title         string
	Lanes         []svgLane
	Ticks         []svgTick
	AxisY         float64
}

// Render writes the schedule as an SVG document.
func (r *SVGRenderer) Render(sched *pulse.Schedule, w io.Writer) error {
	width := r.Width
	if width <= 0 {
		width = 900
	}
	laneHeight := r.LaneHeight
	if laneHeight <= 0 {
		laneHeight = 56
	}

	channels := sched.Channels()
	duration := sched.Duration()
	if duration == 0 {
		duration = 1
	}
	plotWidth := float64(width - labelWidth - 16)
	scale := plotWidth / float64(duration)

	doc := svgDoc{
		Width:  float64(width),
		Height: float64(laneHeight*len(channels) + 64),
		Title:  fmt.Sprintf("%s — %d dt", sched.Name(), sched.Duration()),
		AxisY:  float64(laneHeight*len(channels) + 32),
	}

	for i, ch := range channels {
		color, err := channelColor(ch)
		if err != nil {
			return err
		}
		lane := svgLane{
			Label: ch.Name(),
			Top:   float64(32 + i*laneHeight),
			Color: color,
		}
		lane.Mid = lane.Top + float64(laneHeight)/2
		half := float64(laneHeight)/2 - 8

		for _, si := range sched.Instructions() {
			if !touches(si.Instruction, ch) {
				continue
			}
			x := float64(labelWidth) + float64(si.Start)*scale
			boxW := float64(si.Instruction.Duration()) * scale
			switch in := si.Instruction.(type) {
			case *pulse.Play:
				lane.Boxes = append(lane.Boxes, svgBox{
					X: x, Y: lane.Top + 8, W: boxW, H: float64(laneHeight) - 16,
					Fill: color, Opacity: "0.25",
					Title: fmt.Sprintf("%s @%d", in.Name(), si.Start),
				})
				lane.Paths = append(lane.Paths, envelopePath(in.Waveform(), x, lane.Mid, scale, half))
			case *pulse.Delay:
				lane.Boxes = append(lane.Boxes, svgBox{
					X: x, Y: lane.Top + 8, W: boxW, H: float64(laneHeight) - 16,
					Fill: "#999999", Opacity: "0.12",
					Title: fmt.Sprintf("delay %d @%d", in.Duration(), si.Start),
				})
			case *pulse.Acquire:
				lane.Boxes = append(lane.Boxes, svgBox{
					X: x, Y: lane.Top + 8, W: boxW, H: float64(laneHeight) - 16,
					Fill: color, Opacity: "0.45",
					Title: fmt.Sprintf("acquire %d @%d", in.Duration(), si.Start),
				})
			default:
				lane.Markers = append(lane.Markers, svgMarker{
					X: x, Y1: lane.Top + 4, Y2: lane.Top + float64(laneHeight) - 4,
					Title: fmt.Sprintf("%s @%d", in.Name(), si.Start),
				})
			}
		}
		doc.Lanes = append(doc.Lanes, lane)
	}

	for i := 0; i <= 4; i++ {
		t := sched.Duration() * int64(i) / 4
		doc.Ticks = append(doc.Ticks, svgTick{
			X:     float64(labelWidth) + float64(t)*scale,
			Label: fmt.Sprintf("%d", t),
		})
	}

	tpl, err := template.New("svg").Parse(svgTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse SVG template")
	}
	return errors.Wrap(tpl.Execute(w, doc), "unable to render SVG template")
}

func touches(instr pulse.Instruction, ch pulse.Channel) bool {
	for _, c := range instr.Channels() {
		if c == ch {
			return true
		}
	}
	return false
}

// envelopePath builds the polyline points of a waveform's modulus envelope,
// downsampled to roughly one point per horizontal pixel.
func envelopePath(wave *pulse.Waveform, x0, mid, scale, half float64) string {
	samples := wave.Samples()
	step := 1
	if px := int(float64(len(samples)) * scale); px > 0 && len(samples) > px {
		step = len(samples) / px
		if step < 1 {
			step = 1
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%.1f,%.1f", x0, mid)
	for i := 0; i < len(samples); i += step {
		norm := cmplx.Abs(samples[i])
		fmt.Fprintf(&sb, " %.1f,%.1f", x0+float64(i)*scale, mid-norm*half)
	}
	fmt.Fprintf(&sb, " %.1f,%.1f", x0+float64(len(samples))*scale, mid)
	return sb.String()
}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<style>text { font-family: monospace; font-size: 12px; }</style>
<text x="8" y="20">{{.Title}}</text>
{{range $lane := .Lanes}}
<text x="8" y="{{$lane.Mid}}" fill="{{$lane.Color}}">{{$lane.Label}}</text>
<line x1="72" y1="{{$lane.Mid}}" x2="{{$.Width}}" y2="{{$lane.Mid}}" stroke="#dddddd"/>
{{range $b := $lane.Boxes}}<rect x="{{$b.X}}" y="{{$b.Y}}" width="{{$b.W}}" height="{{$b.H}}" fill="{{$b.Fill}}" fill-opacity="{{$b.Opacity}}"><title>{{$b.Title}}</title></rect>
{{end}}{{range $p := $lane.Paths}}<polyline points="{{$p}}" fill="none" stroke="{{$lane.Color}}" stroke-width="1.5"/>
{{end}}{{range $m := $lane.Markers}}<line x1="{{$m.X}}" y1="{{$m.Y1}}" x2="{{$m.X}}" y2="{{$m.Y2}}" stroke="#333333" stroke-dasharray="3,2"><title>{{$m.Title}}</title></line>
{{end}}{{end}}
<line x1="72" y1="{{.AxisY}}" x2="{{.Width}}" y2="{{.AxisY}}" stroke="#333333"/>
{{range $t := .Ticks}}<text x="{{$t.X}}" y="{{$.AxisY}}" dy="14">{{$t.Label}}</text>
{{end}}
</svg>
`
