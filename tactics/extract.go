package tactics

import "regexp"

// Ordered from most to least specific; the first match wins.
var formationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)formation is: (\d-\d-\d-\d|\d-\d-\d|\d-\d)`),
	regexp.MustCompile(`(?i)recommended formation:?\s*(\d-\d-\d-\d|\d-\d-\d|\d-\d)`),
	regexp.MustCompile(`(\d-\d-\d-\d|\d-\d-\d|\d-\d)`),
}

// ExtractFormation recovers a formation label from free-form analysis text.
// It never fails: text without a label-shaped token yields DefaultFormation.
// A matched label outside the catalog is returned as written.
func ExtractFormation(text string) string {
	for _, re := range formationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return DefaultFormation
}
