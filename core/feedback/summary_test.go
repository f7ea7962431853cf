package feedback

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 12, 5, 10, 30, 0, 0, IST)

func ratingsOf(rating int) []int {
	ratings := make([]int, NumQuestions)
	for i := range ratings {
		ratings[i] = rating
	}
	return ratings
}

func newTestResponse(name string, ratings []int) Response {
	return Response{
		Timestamp:  t0,
		Name:       name,
		Department: "Physics",
		Mobile:     "9876543210",
		Email:      name + "@college.edu",
		Ratings:    ratings,
	}
}

func randomResponses(rnd *rand.Rand, n int) []Response {
	responses := make([]Response, n)
	for i := range responses {
		ratings := make([]int, NumQuestions)
		for j := range ratings {
			ratings[j] = MinRating + rnd.Intn(MaxRating-MinRating+1)
		}
		responses[i] = newTestResponse("r", ratings)
	}
	return responses
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		responses []Response
		wantMeans []float64
		wantHist  Histogram // Q1
	}{
		{
			name:      "one all-5 response",
			responses: []Response{newTestResponse("a", ratingsOf(5))},
			wantMeans: ratingsAsMeans(ratingsOf(5)),
			wantHist:  Histogram{0, 0, 0, 0, 1},
		},
		{
			name:      "all-3 and all-5",
			responses: []Response{newTestResponse("a", ratingsOf(3)), newTestResponse("b", ratingsOf(5))},
			wantMeans: ratingsAsMeans(ratingsOf(4)),
			wantHist:  Histogram{0, 0, 1, 0, 1},
		},
		{
			name: "rounded to 2 decimals",
			responses: []Response{
				newTestResponse("a", ratingsOf(1)),
				newTestResponse("b", ratingsOf(1)),
				newTestResponse("c", ratingsOf(2)),
			},
			wantMeans: ratingsAsMeans(nil, 1.33),
			wantHist:  Histogram{2, 1, 0, 0, 0},
		},
		{
			name: "questions are independent",
			responses: []Response{
				newTestResponse("a", []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1}),
				newTestResponse("b", []int{5, 4, 3, 2, 1, 1, 2, 3, 4, 5}),
			},
			wantMeans: ratingsAsMeans(ratingsOf(3)),
			wantHist:  Histogram{1, 0, 0, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Summarize(tt.responses)
			require.NoError(t, err)
			assert.Equal(t, len(tt.responses), s.Count)
			require.Len(t, s.Questions, NumQuestions)
			for i, q := range s.Questions {
				assert.Equal(t, i+1, q.Number)
				assert.Equal(t, tt.wantMeans[i], q.Mean, "Q%d mean", q.Number)
			}
			assert.Equal(t, tt.wantHist, s.Questions[0].Histogram)
		})
	}
}

// ratingsAsMeans returns the float means of ratings, or NumQuestions times mean when ratings is nil.
func ratingsAsMeans(ratings []int, mean ...float64) []float64 {
	means := make([]float64, NumQuestions)
	for i := range means {
		if ratings != nil {
			means[i] = float64(ratings[i])
		} else {
			means[i] = mean[0]
		}
	}
	return means
}

func TestSummarize_noData(t *testing.T) {
	for _, responses := range [][]Response{nil, {}} {
		_, err := Summarize(responses)
		assert.Equal(t, ErrNoData, err)
	}
}

func TestSummarize_properties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		responses := randomResponses(rnd, 1+rnd.Intn(40))

		s, err := Summarize(responses)
		require.NoError(t, err)

		for _, q := range s.Questions {
			assert.GreaterOrEqual(t, q.Mean, float64(MinRating))
			assert.LessOrEqual(t, q.Mean, float64(MaxRating))
			assert.Equal(t, len(responses), q.Histogram.Total(), "buckets sum to the response count")
		}

		// order does not matter
		shuffled := append([]Response(nil), responses...)
		rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		s2, err := Summarize(shuffled)
		require.NoError(t, err)
		assert.Equal(t, s, s2)
	}
}

func TestHistogram(t *testing.T) {
	h := Histogram{1, 0, 2, 0, 3}
	assert.Equal(t, 1, h.Count(1))
	assert.Equal(t, 3, h.Count(5))
	assert.Equal(t, 0, h.Count(0))
	assert.Equal(t, 0, h.Count(6))
	assert.Equal(t, 6, h.Total())

	data, err := h.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":1,"2":0,"3":2,"4":0,"5":3}`, string(data))
}
