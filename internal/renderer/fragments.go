package renderer

import (
	"regexp"
	"strings"
)

// FragmentsKey is the data key holding the requested fragment names.
const FragmentsKey = "__fragments"

// ExtractFragments returns the trimmed bodies of the named fragments,
// concatenated in the order given. For each name only the first
// <!-- fragment: name --> ... <!-- endfragment: name --> region counts.
// When nothing was extracted the text is returned unchanged.
func ExtractFragments(text string, names []string) string {
	var extracted strings.Builder
	for _, name := range names {
		quoted := regexp.QuoteMeta(name)
		pattern, err := regexp.Compile(
			`(?s)<!--\s*fragment\s*:\s*` + quoted + `\s*-->(.*?)<!--\s*endfragment\s*:\s*` + quoted + `\s*-->`,
		)
		if err != nil {
			continue
		}
		if match := pattern.FindStringSubmatch(text); match != nil {
			extracted.WriteString(strings.TrimSpace(match[1]))
		}
	}

	if extracted.Len() == 0 {
		return text
	}
	return extracted.String()
}
