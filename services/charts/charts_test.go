package charts

import (
	"bytes"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fdpfeedback/core/feedback"
)

func summary(t *testing.T, ratings ...[]int) feedback.Summary {
	responses := make([]feedback.Response, 0, len(ratings))
	for _, r := range ratings {
		responses = append(responses, feedback.Response{Timestamp: time.Now(), Ratings: r})
	}
	s, err := feedback.Summarize(responses)
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, buf []byte) {
	img, err := png.Decode(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}

func TestRenderMeans(t *testing.T) {
	s := summary(t, []int{5, 4, 3, 2, 1, 1, 2, 3, 4, 5}, []int{3, 3, 3, 3, 3, 3, 3, 3, 3, 3})
	buf, err := RenderMeans(s)
	require.NoError(t, err)
	decode(t, buf)
}

func TestRenderHistogram(t *testing.T) {
	ratings := make([][]int, 0, 25)
	for i := 0; i < 25; i++ {
		ratings = append(ratings, []int{i%5 + 1, 5, 5, 5, 5, 5, 5, 5, 5, 5})
	}
	s := summary(t, ratings...)

	for _, n := range []int{1, 2, 10} {
		buf, err := RenderHistogram(s, n)
		require.NoError(t, err, "Q%d", n)
		decode(t, buf)
	}

	for _, n := range []int{0, 11} {
		_, err := RenderHistogram(s, n)
		assert.Error(t, err, "Q%d", n)
	}
}

func TestRender_concurrent(t *testing.T) {
	s := summary(t, []int{5, 4, 3, 2, 1, 1, 2, 3, 4, 5}, []int{2, 2, 2, 2, 2, 4, 4, 4, 4, 4})

	var wg sync.WaitGroup
	errs := make([]error, feedback.NumQuestions+1)
	for n := 1; n <= feedback.NumQuestions; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = RenderHistogram(s, n)
		}(n)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = RenderMeans(s)
	}()
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "chart %d", i)
	}
}
