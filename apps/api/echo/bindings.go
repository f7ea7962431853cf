package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core/feedback"
)

// ratingParam returns the form field of question n, e.g. q3.
func ratingParam(n int) string {
	return "q" + strconv.Itoa(n)
}

// bindForm binds the text fields and the q1..q10 sliders of the feedback form.
// An unparsable rating is kept as 0 so that validation reports it.
func bindForm(ctx echo.Context) (feedback.NewResponse, error) {
	var nr feedback.NewResponse
	if err := ctx.Bind(&nr); err != nil {
		return nr, errors.Wrap(err, "binding to NewResponse")
	}

	nr.Ratings = make([]int, feedback.NumQuestions)
	for i := range nr.Ratings {
		if rating, err := strconv.Atoi(ctx.FormValue(ratingParam(i + 1))); err == nil {
			nr.Ratings[i] = rating
		}
	}
	return nr, nil
}
