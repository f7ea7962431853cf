package feedback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, NumQuestions, c.Len())
	assert.Equal(t, "The session objectives were clearly defined.", c.Question(1))
	assert.Equal(t, "Overall, the session met my expectations.", c.Question(10))
	assert.Equal(t, "", c.Question(0))
	assert.Equal(t, "", c.Question(11))
	assert.Equal(t, "Poor", c.ScaleLabel(1))
	assert.Equal(t, "Excellent", c.ScaleLabel(5))
	assert.Equal(t, "", c.ScaleLabel(6))

	qs := c.Questions()
	qs[0] = "changed"
	assert.NotEqual(t, "changed", c.Question(1), "Questions returns a copy")
}

func TestNewCatalog(t *testing.T) {
	tenQuestions := DefaultCatalog().Questions()

	tests := []struct {
		name      string
		scale     []string
		questions []string
		wantErr   bool
	}{
		{name: "too few questions", questions: tenQuestions[:9], wantErr: true},
		{name: "empty question", questions: append(append([]string(nil), tenQuestions[:9]...), ""), wantErr: true},
		{name: "wrong scale", scale: []string{"bad", "good"}, questions: tenQuestions, wantErr: true},
		{name: "default scale", questions: tenQuestions},
		{name: "custom scale", scale: []string{"1", "2", "3", "4", "5"}, questions: tenQuestions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCatalog("", "sub", tt.scale, tt.questions)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, defaultTitle, c.Title())
			assert.Equal(t, "sub", c.Subtitle())
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		c, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog(), c)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("yaml file", func(t *testing.T) {
		content := "title: Workshop Feedback\nsubtitle: Day 1\nquestions:\n"
		for i := 1; i <= NumQuestions; i++ {
			content += "  - Question " + string(rune('A'+i-1)) + "\n"
		}
		fp := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(fp, []byte(content), 0o644))

		c, err := LoadCatalog(fp)
		require.NoError(t, err)
		assert.Equal(t, "Workshop Feedback", c.Title())
		assert.Equal(t, "Day 1", c.Subtitle())
		assert.Equal(t, "Question A", c.Question(1))
		assert.Equal(t, "Question J", c.Question(10))
		assert.Equal(t, "Good", c.ScaleLabel(4))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		fp := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(fp, []byte("questions: [a, b"), 0o644))
		_, err := LoadCatalog(fp)
		assert.Error(t, err)
	})
}
