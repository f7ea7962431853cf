// Package charts renders the feedback summary as PNG bar charts.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/trezcool/fdpfeedback/core/feedback"
)

const (
	width  = 900
	height = 500

	marginLeft   = 70.0
	marginRight  = 30.0
	marginTop    = 60.0
	marginBottom = 70.0
)

var (
	background = color.White
	axisColor  = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	gridColor  = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	barColor   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	textColor  = color.Black

	fontOnce sync.Once
	goFont   *opentype.Font
	fontErr  error
)

// newFaces returns fresh faces for one render. Faces hold a glyph buffer and must not be
// shared between goroutines; the parsed font can be.
func newFaces() (title, label font.Face, err error) {
	fontOnce.Do(func() {
		goFont, fontErr = opentype.Parse(goregular.TTF)
		fontErr = errors.Wrap(fontErr, "parsing font")
	})
	if fontErr != nil {
		return nil, nil, fontErr
	}

	if title, err = opentype.NewFace(goFont, &opentype.FaceOptions{Size: 18, DPI: 72, Hinting: font.HintingFull}); err != nil {
		return nil, nil, errors.Wrap(err, "loading title font face")
	}
	if label, err = opentype.NewFace(goFont, &opentype.FaceOptions{Size: 13, DPI: 72, Hinting: font.HintingFull}); err != nil {
		_ = title.Close()
		return nil, nil, errors.Wrap(err, "loading label font face")
	}
	return title, label, nil
}

type bar struct {
	label string
	value float64
	text  string
}

type axis struct {
	min, max float64
	ticks    []float64
}

// RenderMeans draws one bar per question; the y axis is fixed to the rating range.
func RenderMeans(s feedback.Summary) ([]byte, error) {
	bars := make([]bar, 0, len(s.Questions))
	for _, q := range s.Questions {
		bars = append(bars, bar{
			label: fmt.Sprintf("Q%d", q.Number),
			value: q.Mean,
			text:  fmt.Sprintf("%.2f", q.Mean),
		})
	}
	ax := axis{min: feedback.MinRating, max: feedback.MaxRating}
	for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
		ax.ticks = append(ax.ticks, float64(r))
	}
	title := fmt.Sprintf("Mean rating per question (%d responses)", s.Count)
	return render(title, "Question", "Mean rating", bars, ax)
}

// RenderHistogram draws the rating distribution of question n (1-based).
func RenderHistogram(s feedback.Summary, n int) ([]byte, error) {
	if n < 1 || n > len(s.Questions) {
		return nil, fmt.Errorf("question %d out of range [1, %d]", n, len(s.Questions))
	}
	q := s.Questions[n-1]

	var top int
	bars := make([]bar, 0, len(q.Histogram))
	for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
		c := q.Histogram.Count(r)
		if c > top {
			top = c
		}
		bars = append(bars, bar{label: fmt.Sprint(r), value: float64(c), text: fmt.Sprint(c)})
	}

	ax := axis{max: float64(top)}
	if top == 0 {
		ax.max = 1
	}
	step := 1
	for int(ax.max)/step > 10 {
		step *= 2
	}
	for t := 0; float64(t) <= ax.max; t += step {
		ax.ticks = append(ax.ticks, float64(t))
	}
	title := fmt.Sprintf("Q%d: rating distribution (mean %.2f)", q.Number, q.Mean)
	return render(title, "Rating", "Responses", bars, ax)
}

func render(title, xLabel, yLabel string, bars []bar, ax axis) ([]byte, error) {
	titleFace, labelFace, err := newFaces()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = titleFace.Close()
		_ = labelFace.Close()
	}()

	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	plotW := float64(width) - marginLeft - marginRight
	plotH := float64(height) - marginTop - marginBottom
	y := func(v float64) float64 {
		if v < ax.min {
			v = ax.min
		}
		return marginTop + plotH - (v-ax.min)/(ax.max-ax.min)*plotH
	}

	// title
	dc.SetFontFace(titleFace)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(width)/2, marginTop/2, 0.5, 0.5)

	// grid & y ticks
	dc.SetFontFace(labelFace)
	dc.SetLineWidth(1)
	for _, t := range ax.ticks {
		ty := y(t)
		dc.SetColor(gridColor)
		dc.DrawLine(marginLeft, ty, marginLeft+plotW, ty)
		dc.Stroke()
		dc.SetColor(textColor)
		dc.DrawStringAnchored(fmt.Sprint(t), marginLeft-8, ty, 1, 0.5)
	}

	// bars
	if n := len(bars); n > 0 {
		slot := plotW / float64(n)
		bw := slot * 0.6
		for i, b := range bars {
			x := marginLeft + slot*float64(i) + (slot-bw)/2
			top := y(b.value)
			dc.SetColor(barColor)
			dc.DrawRectangle(x, top, bw, marginTop+plotH-top)
			dc.Fill()

			dc.SetColor(textColor)
			dc.DrawStringAnchored(b.text, x+bw/2, top-6, 0.5, 0)
			dc.DrawStringAnchored(b.label, x+bw/2, marginTop+plotH+16, 0.5, 0.5)
		}
	}

	// axes
	dc.SetColor(axisColor)
	dc.SetLineWidth(2)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()

	// axis labels
	dc.SetColor(textColor)
	dc.DrawStringAnchored(xLabel, marginLeft+plotW/2, float64(height)-marginBottom/3, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 20, marginTop+plotH/2)
	dc.DrawStringAnchored(yLabel, 20, marginTop+plotH/2, 0.5, 0.5)
	dc.Pop()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "encoding png")
	}
	return buf.Bytes(), nil
}
