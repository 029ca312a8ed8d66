package export

import (
	"fmt"
	"sort"

	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Summary collects the results of ExportAll.
type Summary struct {
	Results []Result
}

// Written returns the results that produced a file.
func (s *Summary) Written() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Skipped {
			out = append(out, r)
		}
	}
	return out
}

// Skipped returns the number of structures without a surface.
func (s *Summary) Skipped() int {
	return len(s.Results) - len(s.Written())
}

func (s *Summary) String() string {
	n := len(s.Written())
	return fmt.Sprintf("%d %s exported, %d skipped", n, noun("structure", n), s.Skipped())
}

func noun(word string, n int) string {
	if n == 1 {
		return word
	}
	return inflection.Plural(word)
}

// Plot saves a bar chart of the face counts of the top largest exported
// structures. The image format follows the extension of path.
func (s *Summary) Plot(path string, top int) error {
	written := s.Written()
	if len(written) == 0 {
		return errors.New("no exported structures to plot")
	}
	sort.SliceStable(written, func(i, j int) bool { return written[i].Faces > written[j].Faces })
	if top > 0 && top < len(written) {
		written = written[:top]
	}
	values := make(plotter.Values, len(written))
	names := make([]string, len(written))
	for i, r := range written {
		values[i] = float64(r.Faces)
		names[i] = r.Acronym
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Faces per structure (top %d)", len(written))
	p.Y.Label.Text = "faces"
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names...)
	width := vg.Length(len(written))*vg.Points(18) + 2*vg.Inch
	return p.Save(width, 4*vg.Inch, path)
}
