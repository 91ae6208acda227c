package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch

	defaultBarColor  = "#1F77B4"
	highlightColor   = "#FF6B00"
	defaultLineColor = "#2196F3"
)

// Bar is one labelled bar. An empty Color uses the chart default.
type Bar struct {
	Label string
	Value float64
	Color string
}

type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
}

type Point struct {
	X float64
	Y float64
}

type Series struct {
	Name   string
	Color  string
	Points []Point
}

type LineChart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// Chart is anything that can be drawn as a gonum plot.
type Chart interface {
	Plot() (*plot.Plot, error)
}

// Render draws c as PNG into w.
func Render(w io.Writer, c Chart, width, height vg.Length) error {
	p, err := c.Plot()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save draws c to a file; the format follows the extension.
func Save(path string, c Chart, width, height vg.Length) error {
	p, err := c.Plot()
	if err != nil {
		return err
	}
	return p.Save(width, height, path)
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

func (c BarChart) Plot() (*plot.Plot, error) {
	p := newPlot(c.Title, c.XLabel, c.YLabel)
	if len(c.Bars) == 0 {
		return p, nil
	}

	labels := make([]string, len(c.Bars))
	maxValue := 0.0
	for i, b := range c.Bars {
		labels[i] = b.Label
		maxValue = math.Max(maxValue, b.Value)
	}

	for _, layer := range splitByColor(c.Bars) {
		bars, err := plotter.NewBarChart(layer.values, vg.Points(20))
		if err != nil {
			return nil, fmt.Errorf("bar chart %q: %w", c.Title, err)
		}
		col, err := ParseHex(layer.color)
		if err != nil {
			return nil, err
		}
		bars.Color = col
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
	}

	p.Add(plotter.NewGrid())
	p.NominalX(labels...)
	if len(labels) > 6 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0
	if maxValue > 0 {
		p.Y.Max = maxValue * 1.1
	}
	return p, nil
}

type colorLayer struct {
	color  string
	values plotter.Values
}

// splitByColor turns bars into one layer per distinct colour, in first-seen
// order. Every layer has a slot for every bar; bars of other colours are 0.
func splitByColor(bars []Bar) []colorLayer {
	var layers []colorLayer
	index := map[string]int{}
	for i, b := range bars {
		col := strings.ToUpper(b.Color)
		if col == "" {
			col = defaultBarColor
		}
		pos, ok := index[col]
		if !ok {
			pos = len(layers)
			index[col] = pos
			layers = append(layers, colorLayer{color: col, values: make(plotter.Values, len(bars))})
		}
		layers[pos].values[i] = math.Max(b.Value, 0)
	}
	return layers
}

func (c LineChart) Plot() (*plot.Plot, error) {
	p := newPlot(c.Title, c.XLabel, c.YLabel)
	p.Add(plotter.NewGrid())
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i].X = pt.X
			xys[i].Y = pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", s.Name, err)
		}
		hex := s.Color
		if hex == "" {
			hex = defaultLineColor
		}
		col, err := ParseHex(hex)
		if err != nil {
			return nil, err
		}
		line.Color = col
		line.Width = vg.Points(2)
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}
	p.Legend.Top = true
	p.Y.Min = 0
	return p, nil
}

// ParseHex parses #RGB or #RRGGBB.
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
