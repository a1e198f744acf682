package charts

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	PieChartFilename  = "pie_chart.png"
	LineChartFilename = "line_chart.png"

	pieSize    = 480
	lineWidth  = 640
	lineHeight = 320
)

// fixed palette cycled per category slice
var palette = [][3]float64{
	{0.22, 0.49, 0.72},
	{0.89, 0.47, 0.20},
	{0.30, 0.69, 0.29},
	{0.84, 0.15, 0.16},
	{0.58, 0.40, 0.74},
	{0.55, 0.34, 0.29},
	{0.89, 0.47, 0.76},
	{0.50, 0.50, 0.50},
}

// Renderer rasterizes the derived category counts into per-user chart
// images at deterministic paths. Rendering failures are the caller's to
// log; they are never fatal to the analysis flow.
type Renderer struct {
	baseDir string
}

func NewRenderer(baseDir string) *Renderer {
	return &Renderer{baseDir: baseDir}
}

// UserDir returns (and creates) the chart directory for a user.
func (r *Renderer) UserDir(username string) (string, error) {
	dir := filepath.Join(r.baseDir, username)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chart directory '%s': %w", dir, err)
	}
	return dir, nil
}

// Render writes both chart images for the given chart data. Empty data is a
// no-op: zero-valued categories are never plotted, and an all-empty mapping
// produces no files.
func (r *Renderer) Render(username string, chartData map[string]int) error {
	if len(chartData) == 0 {
		return nil
	}
	dir, err := r.UserDir(username)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(chartData))
	for k := range chartData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := renderPie(filepath.Join(dir, PieChartFilename), keys, chartData); err != nil {
		return fmt.Errorf("pie chart: %w", err)
	}
	if err := renderLine(filepath.Join(dir, LineChartFilename), keys, chartData); err != nil {
		return fmt.Errorf("line chart: %w", err)
	}
	return nil
}

func renderPie(path string, keys []string, data map[string]int) error {
	dc := gg.NewContext(pieSize, pieSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	total := 0
	for _, k := range keys {
		total += data[k]
	}

	cx, cy := float64(pieSize)/2, float64(pieSize)/2+10
	radius := float64(pieSize)/2 - 70

	angle := -math.Pi / 2
	for i, k := range keys {
		frac := float64(data[k]) / float64(total)
		sweep := frac * 2 * math.Pi
		c := palette[i%len(palette)]

		dc.SetRGB(c[0], c[1], c[2])
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, radius, angle, angle+sweep)
		dc.LineTo(cx, cy)
		dc.Fill()

		// label at the slice midpoint, pushed outside the radius
		mid := angle + sweep/2
		lx := cx + (radius+30)*math.Cos(mid)
		ly := cy + (radius+30)*math.Sin(mid)
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(fmt.Sprintf("%s %.1f%%", k, frac*100), lx, ly, 0.5, 0.5)

		angle += sweep
	}

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored("Feature Distribution", float64(pieSize)/2, 18, 0.5, 0.5)
	return dc.SavePNG(path)
}

func renderLine(path string, keys []string, data map[string]int) error {
	dc := gg.NewContext(lineWidth, lineHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	maxVal := 0
	for _, k := range keys {
		if data[k] > maxVal {
			maxVal = data[k]
		}
	}

	const marginX, marginTop, marginBottom = 50.0, 40.0, 40.0
	plotW := float64(lineWidth) - 2*marginX
	plotH := float64(lineHeight) - marginTop - marginBottom

	pointX := func(i int) float64 {
		if len(keys) == 1 {
			return marginX + plotW/2
		}
		return marginX + plotW*float64(i)/float64(len(keys)-1)
	}
	pointY := func(v int) float64 {
		return marginTop + plotH*(1-float64(v)/float64(maxVal))
	}

	// dashed grid lines
	dc.SetRGBA(0.5, 0.5, 0.5, 0.4)
	dc.SetDash(4, 4)
	for g := 0; g <= 4; g++ {
		y := marginTop + plotH*float64(g)/4
		dc.DrawLine(marginX, y, marginX+plotW, y)
		dc.Stroke()
	}
	dc.SetDash()

	dc.SetRGB(0.22, 0.49, 0.72)
	dc.SetLineWidth(2)
	for i := 1; i < len(keys); i++ {
		dc.DrawLine(pointX(i-1), pointY(data[keys[i-1]]), pointX(i), pointY(data[keys[i]]))
		dc.Stroke()
	}
	for i, k := range keys {
		dc.DrawCircle(pointX(i), pointY(data[k]), 4)
		dc.Fill()
	}

	dc.SetRGB(0.1, 0.1, 0.1)
	for i, k := range keys {
		dc.DrawStringAnchored(k, pointX(i), float64(lineHeight)-marginBottom+16, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Feature Trend", float64(lineWidth)/2, 18, 0.5, 0.5)
	return dc.SavePNG(path)
}
