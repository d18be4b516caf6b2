// Package report renders inference results as PNG plots.
package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pgmkit/mle"
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
)

type config struct {
	width, height vg.Length
	bins          int
	title         string
}

// Option configures a plot.
type Option func(*config)

// WithSize sets the image size. Default 6x4 inches.
func WithSize(width, height vg.Length) Option {
	return func(c *config) {
		c.width, c.height = width, height
	}
}

// WithBins sets the histogram bin count for continuous families. Default 20.
func WithBins(n int) Option {
	return func(c *config) {
		c.bins = n
	}
}

// WithTitle overrides the plot title.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

func newConfig(opts []Option) config {
	c := config{width: 6 * vg.Inch, height: 4 * vg.Inch, bins: 20}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

var (
	histFill  = color.RGBA{R: 160, G: 190, B: 230, A: 255}
	fitColour = color.RGBA{R: 220, A: 255}
)

// SampleHistogram writes a PNG of sample as a histogram normalised to unit
// area, overlaid with the fitted density of est. Discrete families get one
// bar per integer and the fitted mass drawn as points.
func SampleHistogram(w io.Writer, sample []float64, est *mle.Estimation, opts ...Option) error {
	const op = "report.SampleHistogram"
	cfg := newConfig(opts)

	if len(sample) == 0 {
		return errors.NewEmptyDataError(op, "sample")
	}
	if est == nil {
		return errors.NewInvalidConfigurationError(op, "estimation", "must not be nil", nil)
	}
	if cfg.bins < 1 {
		return errors.NewInvalidConfigurationError(op, "bins", "must be >= 1", cfg.bins)
	}
	if err := errors.CheckNumericalStability(op, sample); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = cfg.title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s fit (n=%d)", est.Family, len(sample))
	}
	p.X.Label.Text = "x"
	p.Y.Label.Text = "density"

	lo, hi := floats.Min(sample), floats.Max(sample)

	h, err := plotter.NewHist(plotter.Values(sample), cfg.bins)
	if err != nil {
		return errors.Wrap(err, "build histogram")
	}
	h.FillColor = histFill

	var fit plot.Plotter
	if est.Family.Discrete() {
		h.Bins, h.Width = integerBins(sample, lo, hi), 1

		pts := make(plotter.XYs, 0, int(hi-lo)+1)
		for k := lo; k <= hi; k++ {
			pts = append(pts, plotter.XY{X: k, Y: est.Prob(k)})
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.Wrap(err, "build mass points")
		}
		s.Color = fitColour
		s.Radius = vg.Points(3)
		fit = s
	} else {
		h.Normalize(1)

		f := plotter.NewFunction(est.Prob)
		f.XMin, f.XMax = lo, hi
		f.Samples = 200
		f.Color = fitColour
		f.Width = vg.Points(2)
		fit = f
	}

	p.Add(h, fit)
	p.Legend.Add("sample", h)
	if thumb, ok := fit.(plot.Thumbnailer); ok {
		p.Legend.Add("fitted", thumb)
	}
	return render(p, cfg, w)
}

// integerBins builds unit-width bins centred on each integer in [lo, hi],
// weighted by relative frequency.
func integerBins(sample []float64, lo, hi float64) []plotter.HistogramBin {
	bins := make([]plotter.HistogramBin, int(hi-lo)+1)
	for i := range bins {
		k := lo + float64(i)
		bins[i] = plotter.HistogramBin{Min: k - 0.5, Max: k + 0.5}
	}
	w := 1 / float64(len(sample))
	for _, x := range sample {
		bins[int(math.Round(x-lo))].Weight += w
	}
	return bins
}

// TableCurves writes a PNG with one line per column of table against the
// row index, e.g. the per-state columns of a forward, backward or Viterbi
// table. labels names the columns.
func TableCurves(w io.Writer, table *mat.Dense, labels []string, opts ...Option) error {
	const op = "report.TableCurves"
	cfg := newConfig(opts)

	if table == nil {
		return errors.NewInvalidConfigurationError(op, "table", "must not be nil", nil)
	}
	rows, cols := table.Dims()
	if len(labels) != cols {
		return errors.NewInvalidConfigurationError(op, "labels", fmt.Sprintf("need one label per column (%d)", cols), len(labels))
	}
	if err := errors.CheckMatrix(op, table); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "value"

	lines := make([]interface{}, 0, 2*cols)
	for j := 0; j < cols; j++ {
		pts := make(plotter.XYs, rows)
		for t := 0; t < rows; t++ {
			pts[t] = plotter.XY{X: float64(t + 1), Y: table.At(t, j)}
		}
		lines = append(lines, labels[j], pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "add table curves")
	}
	return render(p, cfg, w)
}

func render(p *plot.Plot, cfg config, w io.Writer) error {
	wt, err := p.WriterTo(cfg.width, cfg.height, "png")
	if err != nil {
		return errors.Wrap(err, "create png canvas")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write png")
	}
	return nil
}
