package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/fitts.report/internal/experiment"
	"github.com/banshee-data/fitts.report/internal/fitts"
)

// WriteEndpointScatterPNG plots each trial's selection endpoint in
// task-axis coordinates: x is the signed along-axis offset (the value
// effective width is computed from), y the orthogonal miss distance.
// Degenerate trials (zero-length task axis) are skipped.
func WriteEndpointScatterPNG(path string, seq *experiment.Sequence) error {
	pts := make(plotter.XYs, 0, len(seq.Trials))
	for _, t := range seq.Trials {
		dx, err := fitts.ProjectedOffset(t.From, t.To, t.Selection)
		if err != nil {
			continue
		}
		ortho, err := fitts.OrthogonalOffset(t.From, t.To, t.Selection)
		if err != nil {
			continue
		}
		pts = append(pts, plotter.XY{X: dx, Y: orthoSign(t)*ortho})
	}
	if len(pts) == 0 {
		return fmt.Errorf("sequence %s has no plottable endpoints", seq.SequenceID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Endpoints A=%.0fmm W=%.0fmm", seq.AmplitudeMm, seq.WidthMm)
	p.X.Label.Text = "along-axis offset (mm)"
	p.Y.Label.Text = "orthogonal offset (mm)"
	p.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	sc.GlyphStyle.Radius = vg.Points(2.5)
	sc.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(sc)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save scatter plot: %w", err)
	}
	return nil
}

// orthoSign disambiguates which side of the task axis the selection
// fell on, using the XY-plane cross product. Trials recorded in full 3D
// keep the positive convention.
func orthoSign(t *experiment.Trial) float64 {
	axis := t.To.Sub(t.From)
	miss := t.Selection.Sub(t.To)
	cross := axis.X*miss.Y - axis.Y*miss.X
	if cross < 0 {
		return -1
	}
	return 1
}
