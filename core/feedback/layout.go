package feedback

import (
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/fdpfeedback/core"
)

// Header is the persisted column layout; column order is significant.
var Header = func() []string {
	h := []string{"Timestamp", "Name", "Department", "Mobile", "Email"}
	for i := 1; i <= NumQuestions; i++ {
		h = append(h, "Q"+strconv.Itoa(i))
	}
	return h
}()

const numTextCols = 5

// Row encodes r in the persisted column layout.
func (r Response) Row() []string {
	row := make([]string, 0, len(Header))
	row = append(row, r.FormattedTimestamp(), r.Name, r.Department, r.Mobile, r.Email)
	for _, rating := range r.Ratings {
		row = append(row, strconv.Itoa(rating))
	}
	return row
}

// ParseRow decodes a persisted row. rowNum (1-based) is only used for error reporting.
// Rows not matching the layout return a *core.SchemaMismatchError.
func ParseRow(rowNum int, row []string) (Response, error) {
	if len(row) != len(Header) {
		return Response{}, core.NewSchemaMismatchError(rowNum, "expected %d columns, got %d", len(Header), len(row))
	}

	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(row[0]), IST)
	if err != nil {
		return Response{}, core.NewSchemaMismatchError(rowNum, "invalid timestamp %q", row[0])
	}

	r := Response{
		Timestamp:  ts,
		Name:       strings.TrimSpace(row[1]),
		Department: strings.TrimSpace(row[2]),
		Mobile:     strings.TrimSpace(row[3]),
		Email:      strings.TrimSpace(row[4]),
		Ratings:    make([]int, NumQuestions),
	}
	for i, val := range []string{r.Name, r.Department, r.Mobile, r.Email} {
		if val == "" {
			return Response{}, core.NewSchemaMismatchError(rowNum, "empty %s", Header[i+1])
		}
	}
	for i := 0; i < NumQuestions; i++ {
		cell := strings.TrimSpace(row[numTextCols+i])
		rating, err := strconv.Atoi(cell)
		if err != nil || rating < MinRating || rating > MaxRating {
			return Response{}, core.NewSchemaMismatchError(rowNum, "invalid %s rating %q", Header[numTextCols+i], cell)
		}
		r.Ratings[i] = rating
	}
	return r, nil
}

// IsHeader reports whether row is the expected header row.
func IsHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, col := range row {
		if !strings.EqualFold(strings.TrimSpace(col), Header[i]) {
			return false
		}
	}
	return true
}

// looksLikeHeader reports whether row is meant to be a header, i.e. its first cell is not a timestamp.
func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(row[0]), IST)
	return err != nil
}

// trimBOM drops the byte order mark spreadsheet apps put in front of "CSV UTF-8" files.
func trimBOM(row []string) []string {
	if len(row) == 0 || !strings.HasPrefix(row[0], "\ufeff") {
		return row
	}
	trimmed := append([]string{strings.TrimPrefix(row[0], "\ufeff")}, row[1:]...)
	return trimmed
}

// ParseRows decodes a whole table. The first row may be the header; a first row that
// looks like a header but differs from Header is a schema mismatch.
func ParseRows(rows [][]string) ([]Response, error) {
	responses := make([]Response, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			row = trimBOM(row)
			if IsHeader(row) {
				continue
			}
			if looksLikeHeader(row) {
				return nil, core.NewSchemaMismatchError(1, "unexpected header %v", row)
			}
		}
		r, err := ParseRow(i+1, row)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, nil
}
