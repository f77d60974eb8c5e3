// Package cvedge extracts bar edge evidence from camera images with OpenCV.
package cvedge

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/banshee-data/reps.report/internal/bar"
)

// Config holds the OpenCV pipeline parameters.
type Config struct {
	ClipLimit         float64 // CLAHE clip limit
	TileGrid          int     // CLAHE tiles per side
	BlurKernel        int     // Gaussian kernel size (odd)
	ROIFraction       float64 // top share of the image searched
	HoughThreshold    int
	MinLengthFraction float64 // minimum line length as a share of width
	MaxLineGap        float64 // px
}

// DefaultConfig returns the stock pipeline.
func DefaultConfig() Config {
	return Config{
		ClipLimit:         2.5,
		TileGrid:          8,
		BlurKernel:        5,
		ROIFraction:       0.65,
		HoughThreshold:    80,
		MinLengthFraction: bar.MinLengthFraction,
		MaxLineGap:        25,
	}
}

// Extractor implements bar.EdgeSource.
type Extractor struct {
	cfg Config
}

var _ bar.EdgeSource = (*Extractor)(nil)

// New returns an Extractor.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract converts img to a Mat and runs ExtractMat.
func (e *Extractor) Extract(img image.Image) (bar.EdgeFrame, error) {
	if img == nil {
		return bar.EdgeFrame{}, errors.New("nil image")
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return bar.EdgeFrame{}, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()
	return e.ExtractMat(mat)
}

// ExtractMat runs the pipeline on a BGR frame as delivered by VideoCapture.
func (e *Extractor) ExtractMat(frame gocv.Mat) (bar.EdgeFrame, error) {
	if frame.Empty() {
		return bar.EdgeFrame{}, errors.New("empty frame")
	}
	width, height := frame.Cols(), frame.Rows()

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	clahe := gocv.NewCLAHEWithParams(e.cfg.ClipLimit, image.Pt(e.cfg.TileGrid, e.cfg.TileGrid))
	defer clahe.Close()
	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(gray, &enhanced)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := e.cfg.BlurKernel | 1
	gocv.GaussianBlur(enhanced, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	lower, upper := bar.AutoCannyThresholds(bar.MedianIntensity(blurred.ToBytes()))
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(lower), float32(upper))

	roiRows := bar.ROIRows(height, e.cfg.ROIFraction)
	ef := bar.EdgeFrame{
		Width:      width,
		Height:     height,
		ROIHeight:  roiRows,
		RowDensity: bar.RowDensity(edges.ToBytes(), width, roiRows),
	}
	if roiRows < 1 {
		return ef, nil
	}

	roi := edges.Region(image.Rect(0, 0, width, roiRows))
	defer roi.Close()
	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(roi, &lines, 1, float32(math.Pi/180), e.cfg.HoughThreshold,
		float32(float64(width)*e.cfg.MinLengthFraction), float32(e.cfg.MaxLineGap))

	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		ef.Segments = append(ef.Segments, bar.Segment{
			X1: int(v[0]), Y1: int(v[1]), X2: int(v[2]), Y2: int(v[3]),
		})
	}
	return ef, nil
}
