package feedback

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	defaultTitle    = "Faculty Feedback Form"
	defaultSubtitle = "Two-Day Workshop: Teaching Transformation – AI Tools for NEP Pedagogy"

	defaultScale = []string{"Poor", "Fair", "Satisfactory", "Good", "Excellent"}

	defaultQuestions = []string{
		"The session objectives were clearly defined.",
		"Content was relevant to NEP 2020 pedagogy.",
		"AI tool demonstrations were effective.",
		"Time was managed efficiently.",
		"Interaction and engagement were encouraged.",
		"The resource person(s) explained clearly.",
		"Hands-on activities were useful.",
		"Materials provided were helpful.",
		"Venue and logistics were satisfactory.",
		"Overall, the session met my expectations.",
	}
)

// Catalog is the immutable list of questions the ratings are index-aligned with.
// Build it once at startup and pass it around by value.
type Catalog struct {
	title     string
	subtitle  string
	scale     []string
	questions []string
}

type catalogFile struct {
	Title     string   `yaml:"title"`
	Subtitle  string   `yaml:"subtitle"`
	Scale     []string `yaml:"scale"`
	Questions []string `yaml:"questions"`
}

func DefaultCatalog() Catalog {
	c, _ := NewCatalog(defaultTitle, defaultSubtitle, defaultScale, defaultQuestions)
	return c
}

// NewCatalog copies its inputs; it requires exactly NumQuestions questions and one label per rating.
func NewCatalog(title, subtitle string, scale, questions []string) (Catalog, error) {
	if len(questions) != NumQuestions {
		return Catalog{}, fmt.Errorf("catalog needs %d questions, got %d", NumQuestions, len(questions))
	}
	if len(scale) == 0 {
		scale = defaultScale
	}
	if len(scale) != MaxRating-MinRating+1 {
		return Catalog{}, fmt.Errorf("catalog needs %d scale labels, got %d", MaxRating-MinRating+1, len(scale))
	}
	for i, q := range questions {
		if q == "" {
			return Catalog{}, fmt.Errorf("catalog question %d is empty", i+1)
		}
	}
	if title == "" {
		title = defaultTitle
	}
	return Catalog{
		title:     title,
		subtitle:  subtitle,
		scale:     append([]string(nil), scale...),
		questions: append([]string(nil), questions...),
	}, nil
}

// LoadCatalog reads a YAML catalog file. An empty path returns the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, errors.Wrap(err, "reading catalog file")
	}
	var cf catalogFile
	if err = yaml.Unmarshal(data, &cf); err != nil {
		return Catalog{}, errors.Wrap(err, "parsing catalog file")
	}
	c, err := NewCatalog(cf.Title, cf.Subtitle, cf.Scale, cf.Questions)
	return c, errors.Wrap(err, "validating catalog file")
}

func (c Catalog) Title() string    { return c.title }
func (c Catalog) Subtitle() string { return c.subtitle }
func (c Catalog) Len() int         { return len(c.questions) }

// Question returns the text of question n (1-based).
func (c Catalog) Question(n int) string {
	if n < 1 || n > len(c.questions) {
		return ""
	}
	return c.questions[n-1]
}

func (c Catalog) Questions() []string {
	return append([]string(nil), c.questions...)
}

// ScaleLabel returns the verbal meaning of a rating, e.g. 5 -> "Excellent".
func (c Catalog) ScaleLabel(rating int) string {
	if rating < MinRating || rating > MaxRating {
		return ""
	}
	return c.scale[rating-MinRating]
}
