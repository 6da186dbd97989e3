package amdm

import (
	"html"

	"github.com/PuerkitoBio/goquery"
)

// processChordsBlock flattens the chords block into plain sheet text. Chord
// boxes are replaced by their names in place so chord lines survive, author
// comments are dropped and section keywords go on their own line.
func (p *Parser) processChordsBlock(block *goquery.Selection) string {
	block = block.Clone()

	block.Find(".podbor__author-comment").Remove()

	block.Find(".podbor__chord").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("data-chord")
		if !ok || name == "" {
			name = s.Text()
		}
		s.ReplaceWithHtml(html.EscapeString(name))
	})

	block.Find(".podbor__keyword").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n" + html.EscapeString(s.Text()) + "\n")
	})

	return p.processTextLines(removeComments(block.Text()))
}
