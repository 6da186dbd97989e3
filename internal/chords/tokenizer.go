package chords

import "strings"

// SegmentKind tells plain text apart from chord tokens.
type SegmentKind string

const (
	SegmentText  SegmentKind = "text"
	SegmentChord SegmentKind = "chord"
)

// Segment is one piece of a tokenized line. Offset is the byte offset of Text
// in the original line.
type Segment struct {
	Kind   SegmentKind `json:"kind"`
	Text   string      `json:"text"`
	Offset int         `json:"offset"`
}

func (s Segment) IsChord() bool { return s.Kind == SegmentChord }

// TokenizeLine splits line into plain-text runs and chord tokens. Whitespace
// around a chord stays in the neighbouring text segment, so joining the
// segment texts gives back line unchanged. An empty line yields no segments.
func TokenizeLine(line string) []Segment {
	var segments []Segment
	last := 0
	for _, m := range FindMatches(line) {
		if m.Start > last {
			segments = append(segments, Segment{Kind: SegmentText, Text: line[last:m.Start], Offset: last})
		}
		segments = append(segments, Segment{Kind: SegmentChord, Text: m.Text, Offset: m.Start})
		last = m.End
	}
	if last < len(line) {
		segments = append(segments, Segment{Kind: SegmentText, Text: line[last:], Offset: last})
	}
	return segments
}

// JoinSegments concatenates segment texts in order.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
