package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders tr as a self-contained page with rep count and phase
// index over time, plus the bar row when the exercise tracked one.
func WriteHTML(w io.Writer, tr Trace) error {
	sum := Summarize(tr)
	names, index := tr.Phases()

	x := make([]string, len(tr.Points))
	reps := make([]opts.LineData, len(tr.Points))
	phases := make([]opts.LineData, len(tr.Points))
	var bar []opts.LineData
	if sum.BarRatio > 0 {
		bar = make([]opts.LineData, len(tr.Points))
	}
	for i, p := range tr.Points {
		x[i] = fmt.Sprintf("%.2f", p.T)
		reps[i] = opts.LineData{Value: p.Reps}
		phases[i] = opts.LineData{Value: index[i]}
		if bar != nil {
			if p.BarFound {
				bar[i] = opts.LineData{Value: p.BarY}
			} else {
				bar[i] = opts.LineData{Value: "-"}
			}
		}
	}

	legend := make([]string, len(names))
	for i, n := range names {
		legend[i] = fmt.Sprintf("%d=%s", i, n)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: tr.Exercise + " replay", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title: tr.Exercise,
			Subtitle: fmt.Sprintf("reps=%d rejected=%d frames=%d valid=%.0f%% phases: %s",
				sum.Reps, sum.Rejected, sum.Frames, sum.ValidRatio*100, strings.Join(legend, " ")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "reps", Min: 0}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "phase", Min: 0, Max: maxInt(len(names)-1, 1)})

	line.SetXAxis(x).
		AddSeries("reps", reps).
		AddSeries("phase", phases, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	if bar != nil {
		line.AddSeries("bar row", bar, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	}

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
