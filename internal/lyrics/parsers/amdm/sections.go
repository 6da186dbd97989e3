package amdm

import (
	"strings"
)

// processTextLines normalises the flattened block line by line. Chord lines
// keep their leading spaces so chords stay above the right syllables; lyric
// lines are trimmed. Known section markers are rewritten as "[Name]:" after a
// blank line, unknown bracketed lines are dropped.
func (p *Parser) processTextLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	var (
		out         []string
		afterMarker bool
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || separatorLineRegex.MatchString(trimmed) {
			if !afterMarker {
				out = append(out, "")
			}
			continue
		}

		if strings.HasPrefix(trimmed, "[") {
			afterMarker = p.handleSectionMarker(trimmed, &out)
			continue
		}
		afterMarker = false

		trimmed = strings.TrimSpace(strings.ReplaceAll(trimmed, "*", ""))
		if trimmed == "" {
			continue
		}

		if p.config.Classifier.IsChordLine(line) {
			out = append(out, line)
		} else {
			out = append(out, trimmed)
		}
	}

	return p.finalCleanup(strings.Join(out, "\n"))
}

// handleSectionMarker appends a known marker and reports whether it did.
func (p *Parser) handleSectionMarker(trimmedLine string, out *[]string) bool {
	name, ok := sectionName(trimmedLine)
	if !ok || !p.knownSection(name) {
		return false
	}
	*out = append(*out, "", "["+string(name)+"]:")
	return true
}

func (p *Parser) knownSection(name SectionType) bool {
	for _, s := range p.config.KnownSections {
		if strings.EqualFold(string(s), string(name)) {
			return true
		}
	}
	return false
}
