// Package sheets stores responses in a Google Sheets spreadsheet, one row per response.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

const backend = core.BackendSheets

type Store struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetName     string
}

var _ feedback.Store = (*Store)(nil) // interface compliance check

// ClientOptions turns the configured credentials (a file path or inline JSON) into client options.
// Empty credentials fall back to Application Default Credentials.
func ClientOptions(credentials string) []option.ClientOption {
	creds := strings.TrimSpace(credentials)
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func Open(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*Store, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets service")
	}
	return &Store{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// columns returns the A1 range covering the persisted layout, e.g. 'Sheet1'!A:O.
func (s *Store) columns() string {
	last := string(rune('A' + len(feedback.Header) - 1))
	name := strings.ReplaceAll(s.sheetName, "'", "''")
	return fmt.Sprintf("'%s'!A:%s", name, last)
}

func (s *Store) Append(ctx context.Context, r feedback.Response) error {
	row := make([]interface{}, 0, len(feedback.Header))
	row = append(row, r.FormattedTimestamp(), r.Name, r.Department, r.Mobile, r.Email)
	for _, rating := range r.Ratings {
		row = append(row, rating)
	}

	_, err := s.values.
		Append(s.spreadsheetID, s.columns(), &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return core.NewStoreError(core.Unwritable, backend, err)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]feedback.Response, error) {
	res, err := s.values.
		Get(s.spreadsheetID, s.columns()).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, core.NewStoreError(core.Unreadable, backend, err)
	}

	rows := make([][]string, 0, len(res.Values))
	for _, vals := range res.Values {
		row := make([]string, 0, len(vals))
		for _, v := range vals {
			row = append(row, fmt.Sprint(v))
		}
		rows = append(rows, row)
	}
	return feedback.ParseRows(rows)
}
