package model

// languageIDs maps the platform's language slugs to the external judging
// service's numeric identifiers. The set is closed; anything else is
// rejected before an external call is made.
var languageIDs = map[string]int{
	"cpp17":   54,
	"cpp20":   76,
	"python3": 71,
	"java17":  62,
	"js_node": 63,
	"c":       50,
	"csharp":  51,
	"go":      60,
	"rust":    73,
	"kotlin":  78,
	"php":     68,
	"ruby":    72,
	"scala":   81,
}

// LanguageID resolves a language slug to the judging service's identifier.
func LanguageID(slug string) (int, bool) {
	id, ok := languageIDs[slug]
	return id, ok
}

// SupportedLanguages returns the slugs of the closed language set.
func SupportedLanguages() []string {
	slugs := make([]string, 0, len(languageIDs))
	for slug := range languageIDs {
		slugs = append(slugs, slug)
	}
	return slugs
}
