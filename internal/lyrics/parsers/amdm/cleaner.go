package amdm

import (
	"regexp"
	"strings"
)

var (
	// /* ... */ notes left in the text by editors, closed or cut off at the
	// end of a line.
	commentRegex         = regexp.MustCompile(`/\*[^*]*\*+/`)
	openCommentRegex     = regexp.MustCompile(`(?m)/\*.*$`)
	separatorLineRegex   = regexp.MustCompile(`^[\s|]*$`)
	sectionMarkerRegex   = regexp.MustCompile(`^\[([^\]:]+):?\]:?$`)
	excessiveBlanksRegex = regexp.MustCompile(`\n{2,}`)
)

func removeComments(text string) string {
	text = commentRegex.ReplaceAllString(text, "")
	return openCommentRegex.ReplaceAllString(text, "")
}

// sectionName returns the marker name of a "[Name]:" style line.
func sectionName(line string) (SectionType, bool) {
	m := sectionMarkerRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return SectionType(strings.TrimSpace(m[1])), true
}

// finalCleanup caps blank runs and trims the sheet.
func (p *Parser) finalCleanup(sheet string) string {
	max := p.config.MaxBlankLines
	if max < 0 {
		max = 0
	}
	sheet = excessiveBlanksRegex.ReplaceAllStringFunc(sheet, func(run string) string {
		if len(run)-1 <= max {
			return run
		}
		return strings.Repeat("\n", max+1)
	})
	return strings.Trim(sheet, "\n")
}
