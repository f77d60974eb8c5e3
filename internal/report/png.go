package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyTrace is returned when there is nothing to plot.
var ErrEmptyTrace = errors.New("empty trace")

var (
	repsColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	phaseColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

func newPlot(tr Trace) (*plot.Plot, error) {
	if len(tr.Points) == 0 {
		return nil, ErrEmptyTrace
	}
	names, index := tr.Phases()

	repPts := make(plotter.XYs, len(tr.Points))
	phasePts := make(plotter.XYs, len(tr.Points))
	for i, p := range tr.Points {
		repPts[i] = plotter.XY{X: p.T, Y: float64(p.Reps)}
		phasePts[i] = plotter.XY{X: p.T, Y: float64(index[i])}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %d reps", tr.Exercise, tr.Points[len(tr.Points)-1].Reps)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Reps / phase index"

	repLine, err := plotter.NewLine(repPts)
	if err != nil {
		return nil, err
	}
	repLine.Color = repsColor
	repLine.Width = vg.Points(1.5)
	repLine.StepStyle = plotter.PostStep

	phaseLine, err := plotter.NewLine(phasePts)
	if err != nil {
		return nil, err
	}
	phaseLine.Color = phaseColor
	phaseLine.Width = vg.Points(1)
	phaseLine.StepStyle = plotter.PostStep
	phaseLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(plotter.NewGrid(), repLine, phaseLine)
	p.Legend.Add("reps", repLine)
	p.Legend.Add("phase", phaseLine)
	for i, n := range names {
		p.Legend.Add(fmt.Sprintf("%d = %s", i, n))
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePNG draws tr as a PNG to w.
func WritePNG(w io.Writer, tr Trace) error {
	p, err := newPlot(tr)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG writes tr to path; the format follows the file extension.
func SavePNG(path string, tr Trace) error {
	p, err := newPlot(tr)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
