// Package export writes the stored responses as CSV and the zip bundle offered to organizers.
package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/services/charts"
)

// Bundle entries
const (
	ResponsesFile = "responses.csv"
	SummaryFile   = "summary.csv"
	MeansChart    = "means.png"
)

// QuestionChart returns the bundle entry name of the histogram of question n, e.g. q01.png.
func QuestionChart(n int) string {
	return fmt.Sprintf("q%02d.png", n)
}

// WriteResponses writes the header row followed by one row per response, in the persisted layout.
func WriteResponses(w io.Writer, responses []feedback.Response) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(feedback.Header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, r := range responses {
		if err := cw.Write(r.Row()); err != nil {
			return errors.Wrap(err, "writing response")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing responses")
}

// WriteSummary writes one row per question: number, text, mean and the count of each rating.
func WriteSummary(w io.Writer, s feedback.Summary, catalog feedback.Catalog) error {
	header := []string{"Question", "Text", "Mean"}
	for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
		header = append(header, strconv.Itoa(r))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, q := range s.Questions {
		row := []string{
			fmt.Sprintf("Q%d", q.Number),
			catalog.Question(q.Number),
			strconv.FormatFloat(q.Mean, 'f', 2, 64),
		}
		for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
			row = append(row, strconv.Itoa(q.Histogram.Count(r)))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing summary row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing summary")
}

// WriteBundle writes a zip holding the responses, their summary and the charts.
// When there are no responses, the bundle only holds the (header only) responses file.
func WriteBundle(w io.Writer, responses []feedback.Response, catalog feedback.Catalog, generatedAt time.Time) error {
	zw := zip.NewWriter(w)

	create := func(name string) (io.Writer, error) {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: generatedAt})
		return fw, errors.Wrapf(err, "creating %s", name)
	}

	fw, err := create(ResponsesFile)
	if err != nil {
		return err
	}
	if err = WriteResponses(fw, responses); err != nil {
		return err
	}

	s, err := feedback.Summarize(responses)
	switch {
	case errors.Is(err, feedback.ErrNoData):
		return errors.Wrap(zw.Close(), "closing bundle")
	case err != nil:
		return err
	}

	if fw, err = create(SummaryFile); err != nil {
		return err
	}
	if err = WriteSummary(fw, s, catalog); err != nil {
		return err
	}

	png, err := charts.RenderMeans(s)
	if err != nil {
		return errors.Wrap(err, "rendering means chart")
	}
	if err = writeEntry(create, MeansChart, png); err != nil {
		return err
	}
	for _, q := range s.Questions {
		if png, err = charts.RenderHistogram(s, q.Number); err != nil {
			return errors.Wrapf(err, "rendering Q%d chart", q.Number)
		}
		if err = writeEntry(create, QuestionChart(q.Number), png); err != nil {
			return err
		}
	}
	return errors.Wrap(zw.Close(), "closing bundle")
}

func writeEntry(create func(string) (io.Writer, error), name string, content []byte) error {
	fw, err := create(name)
	if err != nil {
		return err
	}
	_, err = fw.Write(content)
	return errors.Wrapf(err, "writing %s", name)
}
