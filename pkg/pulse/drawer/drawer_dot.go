package drawer

import (
	"fmt"
	"io"
	"sort"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// DOTRenderer draws the schedule as a graphviz precedence graph: one chain
// of instruction nodes per channel, instructions shared across channels
// (acquisitions) joining the chains.
type DOTRenderer struct{}

// NewDOTRenderer creates a DOT renderer.
func NewDOTRenderer() *DOTRenderer {
	return &DOTRenderer{}
}

// Render writes the schedule as DOT text.
func (d *DOTRenderer) Render(sched *pulse.Schedule, w io.Writer) error {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, ch := range sched.Channels() {
		color, err := channelColor(ch)
		if err != nil {
			return err
		}
		err = g.AddVertex(ch.Name(),
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", color),
			graph.VertexAttribute("fontcolor", "white"),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to add channel vertex %s", ch)
		}
	}

	// One node per scheduled instruction, chained per channel in time
	// order. last tracks the tail of each channel's chain.
	last := make(map[pulse.Channel]string)
	for i, si := range sched.Instructions() {
		key := fmt.Sprintf("%d: %s", i, si.Instruction.Name())
		label := fmt.Sprintf("%s\\nt0=%d", si.Instruction.Name(), si.Start)
		if err := g.AddVertex(key, graph.VertexAttribute("label", label)); err != nil {
			return errors.Wrapf(err, "unable to add instruction vertex %s", key)
		}
		for _, ch := range si.Instruction.Channels() {
			prev, ok := last[ch]
			if !ok {
				prev = ch.Name()
			}
			color, err := channelColor(ch)
			if err != nil {
				return err
			}
			err = g.AddEdge(prev, key, graph.EdgeAttribute("color", color))
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return errors.Wrapf(err, "unable to add edge %s -> %s", prev, key)
			}
			last[ch] = key
		}
	}

	desc, err := generateDOT(g)
	if err != nil {
		return errors.Wrap(err, "unable to generate DOT description")
	}
	return renderDOT(w, desc)
}

const dotTemplate = `strict {{.GraphType}} {
	rankdir="LR";
	{{range $s := .Statements}}
	"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
}
`

type description struct {
	GraphType    string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func generateDOT(g graph.Graph[string, string]) (description, error) {
	desc := description{
		GraphType:    "graph",
		EdgeOperator: "--",
	}
	if g.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := g.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}
	for vertex, adjacencies := range adjacencyMap {
		_, props, err := g.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}
		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceAttributes: props.Attributes,
			SourceWeight:     props.Weight,
		})
		for adjacency, edge := range adjacencies {
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeAttributes: edge.Properties.Attributes,
				EdgeWeight:     edge.Properties.Weight,
			})
		}
	}
	// Map iteration order is random; sort for reproducible output.
	sort.Slice(desc.Statements, func(i, j int) bool {
		if desc.Statements[i].Source != desc.Statements[j].Source {
			return desc.Statements[i].Source < desc.Statements[j].Source
		}
		return desc.Statements[i].Target < desc.Statements[j].Target
	})
	return desc, nil
}

func renderDOT(w io.Writer, desc description) error {
	tpl, err := template.New("dot").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse DOT template")
	}
	return errors.Wrap(tpl.Execute(w, desc), "unable to render DOT template")
}
