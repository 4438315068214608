// Package stats turns raw language byte counts into the percentages shown on
// the skills panel.
package stats

// Category tags.
const (
	TagWeb = "web"
	TagDB  = "db"
	TagAI  = "ai"
)

// Category is the display metadata for one category tag.
type Category struct {
	Tag      string
	Title    string
	Subtitle string
}

var categories = []Category{
	{Tag: TagWeb, Title: "Web Development", Subtitle: "React.js, Tailwind CSS, EJS"},
	{Tag: TagDB, Title: "Databases", Subtitle: "MongoDB, MySQL, Firebase, Supabase"},
	{Tag: TagAI, Title: "AI/ML & Cloud", Subtitle: "Azure, Docker, HuggingFace"},
}

// CategoryMap assigns a language name, as reported by GitHub, to a category
// tag. Languages not listed here belong to no category. Treat it as read-only.
var CategoryMap = map[string]string{
	"JavaScript": TagWeb,
	"TypeScript": TagWeb,
	"HTML":       TagWeb,
	"CSS":        TagWeb,
	"SCSS":       TagWeb,
	"PHP":        TagWeb,

	"SQL":     TagDB,
	"PLpgSQL": TagDB,
	"Python":  TagDB,
	"Java":    TagDB,
	"Go":      TagDB,
	"Ruby":    TagDB,
	"C#":      TagDB,

	"Jupyter Notebook": TagAI,
	"Jupyter":          TagAI,
	"C++":              TagAI,
	"C":                TagAI,
	"Shell":            TagAI,
	"Dockerfile":       TagAI,
	"Makefile":         TagAI,
	"TeX":              TagAI,
	"R":                TagAI,
}

// Categories returns the category cards in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Tags returns the category tags in display order.
func Tags() []string {
	tags := make([]string, 0, len(categories))
	for _, c := range categories {
		tags = append(tags, c.Tag)
	}
	return tags
}

// CategoryOf returns the tag for a language and whether it has one.
func CategoryOf(language string) (string, bool) {
	tag, ok := CategoryMap[language]
	return tag, ok
}

// Lookup returns the metadata for tag.
func Lookup(tag string) (Category, bool) {
	for _, c := range categories {
		if c.Tag == tag {
			return c, true
		}
	}
	return Category{}, false
}
