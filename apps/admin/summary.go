package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core/feedback"
)

func (cli *commandLine) summary() error {
	s, err := cli.svc.Summary(context.Background())
	if err != nil {
		if errors.Is(err, feedback.ErrNoData) {
			_, _ = fmt.Fprintln(cli.out, "No feedback has been submitted yet.")
			return nil
		}
		return err
	}

	catalog := cli.svc.Catalog()
	_, _ = fmt.Fprintf(cli.out, "%s\n%s\nResponses: %d\n\n", catalog.Title(), catalog.Subtitle(), s.Count)

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	header := []string{"#", "Mean"}
	for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
		header = append(header, fmt.Sprint(r))
	}
	header = append(header, "Question")
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, q := range s.Questions {
		row := []string{fmt.Sprintf("Q%d", q.Number), fmt.Sprintf("%.2f", q.Mean)}
		for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
			row = append(row, fmt.Sprint(q.Histogram.Count(r)))
		}
		row = append(row, catalog.Question(q.Number))
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
