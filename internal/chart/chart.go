// Package chart renders simulation output as PNG line and bar charts.
package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Images are rendered at 72 dpi so one point is one pixel.
const dpi = 72

const (
	titleHeight   = vg.Length(36)
	defaultPanelW = vg.Length(480)
	defaultPanelH = vg.Length(320)
)

// Line is one time series, sampled once per season step.
type Line struct {
	Label  string
	Color  color.Color
	Values []float64
}

// Marker is a dashed vertical line at a year.
type Marker struct {
	Year  float64
	Color color.Color
}

// Panel is a single plot of one or more lines against years.
type Panel struct {
	Title   string
	YLabel  string
	Lines   []Line
	Markers []Marker
	Years   float64 // X axis extent
	Legend  bool
}

// Plot builds the panel as a gonum plot.
func (p Panel) Plot() (*plot.Plot, error) {
	plt := plot.New()
	plt.Title.Text = p.Title
	plt.X.Label.Text = "Year"
	plt.Y.Label.Text = p.YLabel
	plt.Add(plotter.NewGrid())

	for _, l := range p.Lines {
		line, err := plotter.NewLine(seasonXYs(l.Values))
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", l.Label, err)
		}
		line.LineStyle.Color = l.Color
		line.LineStyle.Width = vg.Points(1.5)
		plt.Add(line)
		if p.Legend {
			plt.Legend.Add(l.Label, line)
		}
	}
	for _, m := range p.Markers {
		plt.Add(yearMarker{year: m.Year, style: draw.LineStyle{
			Color:  m.Color,
			Width:  vg.Points(1),
			Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
		}})
	}

	plt.X.Min = 0
	if p.Years > 0 {
		plt.X.Max = p.Years
	}
	plt.Y.Min = 0
	if !(plt.Y.Max > 0) {
		plt.Y.Max = 1
	}
	plt.Legend.Top = true
	plt.Legend.Left = true
	return plt, nil
}

// seasonXYs places one value per season step, four to a year.
func seasonXYs(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i) / 4
		xys[i].Y = v
	}
	return xys
}

// yearMarker strokes a vertical line across the whole data area.
type yearMarker struct {
	year  float64
	style draw.LineStyle
}

// Plot implements plot.Plotter.
func (m yearMarker) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	x := trX(m.year)
	if x < c.Min.X || x > c.Max.X {
		return
	}
	c.StrokeLine2(m.style, x, c.Min.Y, x, c.Max.Y)
}

// Grid lays panels out in rows and columns under a common title.
type Grid struct {
	Title       string
	Rows, Cols  int
	Panels      []Panel
	PanelWidth  vg.Length
	PanelHeight vg.Length
}

// Render draws the grid onto a raster canvas.
func (g Grid) Render() (*vgimg.Canvas, error) {
	pw, ph := g.PanelWidth, g.PanelHeight
	if pw <= 0 {
		pw = defaultPanelW
	}
	if ph <= 0 {
		ph = defaultPanelH
	}
	img := newCanvas(vg.Length(g.Cols)*pw, titleHeight+vg.Length(g.Rows)*ph)
	dc := draw.New(img)
	drawTitle(dc, g.Title)

	tiles := draw.Tiles{
		Rows:      g.Rows,
		Cols:      g.Cols,
		PadTop:    titleHeight,
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
		PadX:      vg.Points(8),
		PadY:      vg.Points(8),
	}
	for i, p := range g.Panels {
		if i >= g.Rows*g.Cols {
			break
		}
		plt, err := p.Plot()
		if err != nil {
			return nil, fmt.Errorf("panel %q: %w", p.Title, err)
		}
		plt.Draw(tiles.At(dc, i%g.Cols, i/g.Cols))
	}
	return img, nil
}

// WritePNG encodes the rendered grid.
func (g Grid) WritePNG(w io.Writer) error {
	img, err := g.Render()
	if err != nil {
		return err
	}
	return writePNG(w, img)
}

// Bars is a labelled bar chart on a 0-100 scale.
type Bars struct {
	Title  string
	Labels []string
	Values []float64
	Width  vg.Length
	Height vg.Length
}

// Plot builds the bar chart, one colored bar per value.
func (b Bars) Plot() (*plot.Plot, error) {
	plt := plot.New()
	plt.Title.Text = b.Title
	plt.Y.Label.Text = "Overall score"
	plt.Add(plotter.NewGrid())

	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(b.Values)), Labels: make([]string, len(b.Values))}
	for i, v := range b.Values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(48))
		if err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}
		bar.XMin = float64(i)
		bar.Color = plotutil.Color(i)
		plt.Add(bar)

		labels.XYs[i] = plotter.XY{X: float64(i), Y: v}
		labels.Labels[i] = fmt.Sprintf("%.1f", v)
	}
	if len(b.Values) > 0 {
		values, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("bar labels: %w", err)
		}
		for i := range values.TextStyle {
			values.TextStyle[i].XAlign = draw.XCenter
		}
		values.Offset = vg.Point{Y: vg.Points(4)}
		plt.Add(values)
		plt.NominalX(b.Labels...)
	}

	plt.Y.Min = 0
	plt.Y.Max = 100
	return plt, nil
}

// Render draws the bar chart onto a raster canvas.
func (b Bars) Render() (*vgimg.Canvas, error) {
	w, h := b.Width, b.Height
	if w <= 0 {
		w = 960
	}
	if h <= 0 {
		h = 600
	}
	plt, err := b.Plot()
	if err != nil {
		return nil, err
	}
	img := newCanvas(w, h)
	plt.Draw(draw.New(img))
	return img, nil
}

// WritePNG encodes the rendered bar chart.
func (b Bars) WritePNG(w io.Writer) error {
	img, err := b.Render()
	if err != nil {
		return err
	}
	return writePNG(w, img)
}

func newCanvas(w, h vg.Length) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
}

func writePNG(w io.Writer, img *vgimg.Canvas) error {
	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// drawTitle centers a heading in the top band of the canvas, using the
// plot title font at a larger size.
func drawTitle(dc draw.Canvas, title string) {
	sty := plot.New().Title.TextStyle
	sty.Font.Size = vg.Points(14)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(8)}, title)
}
