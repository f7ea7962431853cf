package feedback

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fdpfeedback/core"
)

// Likert scale
const (
	NumQuestions  = 10
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// TimestampLayout is how submission times are persisted.
const TimestampLayout = "2006-01-02 15:04:05"

// IST is the fixed UTC+5:30 zone submission times are recorded in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// Response is one faculty member's submission. It is never mutated once stored.
type Response struct {
	Timestamp  time.Time `json:"timestamp"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Mobile     string    `json:"mobile"`
	Email      string    `json:"email"`
	Ratings    []int     `json:"ratings"`
}

func (r Response) Equal(o Response) bool {
	if !r.Timestamp.Equal(o.Timestamp) ||
		r.Name != o.Name ||
		r.Department != o.Department ||
		r.Mobile != o.Mobile ||
		r.Email != o.Email ||
		len(r.Ratings) != len(o.Ratings) {
		return false
	}
	for i := range r.Ratings {
		if r.Ratings[i] != o.Ratings[i] {
			return false
		}
	}
	return true
}

// FormattedTimestamp returns the timestamp as persisted, in IST.
func (r Response) FormattedTimestamp() string {
	return r.Timestamp.In(IST).Format(TimestampLayout)
}

// NewResponse contains the information submitted through the form.
type NewResponse struct {
	Name       string `json:"name" form:"name" validate:"notblank"`
	Department string `json:"department" form:"department" validate:"notblank"`
	Mobile     string `json:"mobile" form:"mobile" validate:"notblank"`
	Email      string `json:"email" form:"email" validate:"notblank"`
	Ratings    []int  `json:"ratings" form:"-" validate:"len=10,dive,min=1,max=5"`
}

func (nr *NewResponse) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Department = core.CleanString(nr.Department)
	nr.Mobile = core.CleanString(nr.Mobile)
	nr.Email = core.CleanString(nr.Email)
	return validate.Struct(nr)
}

// DefaultRatings returns the ratings the form starts with.
func DefaultRatings() []int {
	ratings := make([]int, NumQuestions)
	for i := range ratings {
		ratings[i] = DefaultRating
	}
	return ratings
}
