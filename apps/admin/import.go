package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

// importResponses appends every row of the file. Rows are all parsed before the first append
// so that a malformed file imports nothing.
func (cli *commandLine) importResponses(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening import file")
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // column count is checked per row
	rows, err := cr.ReadAll()
	if err != nil {
		var pErr *csv.ParseError
		if errors.As(err, &pErr) {
			return core.NewSchemaMismatchError(pErr.StartLine, "%v", pErr.Err)
		}
		return errors.Wrap(err, "reading import file")
	}

	responses, err := feedback.ParseRows(rows)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for i, r := range responses {
		if err = cli.svc.Restore(ctx, r); err != nil {
			return errors.Wrapf(err, "importing response %d of %d (%d imported)", i+1, len(responses), i)
		}
	}
	_, _ = fmt.Fprintf(cli.out, "Imported %d responses\n", len(responses))
	return nil
}
