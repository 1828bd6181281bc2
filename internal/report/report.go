// Package report renders per-session summaries: an HTML page of charts
// over the sequence results and a PNG scatter of selection endpoints.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/fitts.report/internal/experiment"
)

// WriteHTML renders the session summary charts to w: throughput per
// sequence, mean movement time per sequence, and movement time against
// effective difficulty.
func WriteHTML(w io.Writer, session *experiment.Session, results []*experiment.SequenceResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no sequence results to report for session %s", session.SessionID)
	}

	labels := make([]string, 0, len(results))
	throughputs := make([]opts.BarData, 0, len(results))
	movementTimes := make([]opts.LineData, 0, len(results))
	mtByIDe := make([]opts.ScatterData, 0, len(results))
	for _, r := range results {
		labels = append(labels, fmt.Sprintf("A%.0f/W%.0f", r.AmplitudeMm, r.WidthMm))
		throughputs = append(throughputs, opts.BarData{Value: r.ThroughputBps})
		movementTimes = append(movementTimes, opts.LineData{Value: r.MeanMovementTimeMs})
		mtByIDe = append(mtByIDe, opts.ScatterData{
			Value: []interface{}{r.EffectiveID, r.MeanMovementTimeMs},
		})
	}

	title := fmt.Sprintf("Session %s — %s / %s",
		session.SessionID, session.Participant, session.Condition)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Throughput per sequence"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "bits/s"}),
	)
	bar.SetXAxis(labels).AddSeries("throughput", throughputs)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Subtitle: "Mean movement time per sequence"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	line.SetXAxis(labels).AddSeries("movement time", movementTimes)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Subtitle: "Movement time vs effective difficulty"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "IDe (bits)", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	scatter.AddSeries("sequences", mtByIDe)

	page := components.NewPage()
	page.AddCharts(bar, line, scatter)
	return page.Render(w)
}
