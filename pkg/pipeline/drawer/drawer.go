// Package drawer renders the per-sample step graph as a DOT file,
// optionally annotated with measured step durations: each step carries
// its mean duration as a sub-label and edges fade from blue to red as the
// producing step gets slower.
package drawer

import (
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1"

	"github.com/fastseq/fastseq/pkg/pipeline/measure"
)

// Drawer accumulates the step graph and writes it out with Draw.
type Drawer struct {
	graph    graph.Graph[string, string]
	steps    []string
	fileName string
}

func New(fileName string) *Drawer {
	return &Drawer{
		fileName: fileName,
		graph:    graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddStep adds a step to the graph.
func (d *Drawer) AddStep(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.steps = append(d.steps, name)

	return nil
}

// AddLink adds a producer→consumer edge between two steps.
func (d *Drawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure annotates the graph with the mean step durations collected
// during a run.
func (d *Drawer) AddMeasure(msr *measure.Measure) error {
	var minDur, maxDur time.Duration
	durations := make(map[string]time.Duration, len(d.steps))

	for _, step := range d.steps {
		avg := msr.AVGDuration(step)
		if avg == 0 {
			continue
		}
		durations[step] = avg
		if minDur == 0 || avg < minDur {
			minDur = avg
		}
		if avg > maxDur {
			maxDur = avg
		}
	}
	if len(durations) == 0 {
		return nil
	}

	for step, avg := range durations {
		_, properties, err := d.graph.VertexWithProperties(step)
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}
		properties.Attributes["xlabel"] = avg.String()

		hex, err := heatColor(avg, minDur, maxDur)
		if err != nil {
			return err
		}

		adjacency, err := d.graph.AdjacencyMap()
		if err != nil {
			return errors.Wrap(err, "unable to get adjacency map")
		}
		for child := range adjacency[step] {
			err := d.graph.UpdateEdge(step, child,
				graph.EdgeAttribute("label", avg.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", hex),
			)
			if err != nil {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

// heatColor maps a duration onto a blue→red scale across [minDur, maxDur].
func heatColor(d, minDur, maxDur time.Duration) (string, error) {
	fraction := 1.0
	if maxDur > minDur {
		fraction = float64(d-minDur) / float64(maxDur-minDur)
	}

	red := uint8(maxRGB * fraction)
	blue := uint8(maxRGB * (1 - fraction))

	rgb, err := colors.RGB(red, 0, blue)
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return rgb.ToHEX().String(), nil
}
