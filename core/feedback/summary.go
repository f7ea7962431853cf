package feedback

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ErrNoData is returned when there is nothing to summarize.
var ErrNoData = errors.New("no feedback has been submitted yet")

// Histogram counts responses per rating; index 0 holds rating 1.
type Histogram [MaxRating - MinRating + 1]int

// Count returns how many responses gave rating.
func (h Histogram) Count(rating int) int {
	if rating < MinRating || rating > MaxRating {
		return 0
	}
	return h[rating-MinRating]
}

func (h Histogram) Total() int {
	var total int
	for _, c := range h {
		total += c
	}
	return total
}

// MarshalJSON renders the histogram as {"1": n, ..., "5": n}.
func (h Histogram) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(h))
	for i, c := range h {
		m[strconv.Itoa(i+MinRating)] = c
	}
	return json.Marshal(m)
}

type QuestionStats struct {
	Number    int       `json:"number"` // 1-based
	Mean      float64   `json:"mean"`
	Histogram Histogram `json:"histogram"`
}

// Summary is derived from the stored responses on every read; it is never persisted.
type Summary struct {
	Count     int             `json:"count"`
	Questions []QuestionStats `json:"questions"`
}

// Summarize computes the per-question mean (2 decimals) and rating histogram.
// The result does not depend on the order of responses. Empty input returns ErrNoData.
// responses are expected to hold NumQuestions ratings in [MinRating, MaxRating].
func Summarize(responses []Response) (Summary, error) {
	if len(responses) == 0 {
		return Summary{}, ErrNoData
	}

	sums := make([]int, NumQuestions)
	stats := make([]QuestionStats, NumQuestions)
	for _, r := range responses {
		for i := 0; i < NumQuestions && i < len(r.Ratings); i++ {
			rating := r.Ratings[i]
			sums[i] += rating
			if rating >= MinRating && rating <= MaxRating {
				stats[i].Histogram[rating-MinRating]++
			}
		}
	}

	n := float64(len(responses))
	for i := range stats {
		stats[i].Number = i + 1
		stats[i].Mean = round2(float64(sums[i]) / n)
	}
	return Summary{Count: len(responses), Questions: stats}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
