package amdm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/songbook"
	"go.uber.org/zap"
)

const chordsBlockSelector = `pre[itemprop="chordsBlock"]`

var ErrChordsNotFound = errors.New("chords block not found")

// Parser handles the HTML parsing and chord sheet extraction
type Parser struct {
	client Fetcher
	config ProcessingConfig
}

// NewParser creates a new AmDm parser
func NewParser() *Parser {
	return NewParserWith(NewClient(), DefaultConfig())
}

func NewParserWith(client Fetcher, config ProcessingConfig) *Parser {
	return &Parser{client: client, config: config}
}

// ExtractSongFromAmdm fetches an AmDm page and turns it into a song.
func (p *Parser) ExtractSongFromAmdm(ctx context.Context, pageURL string) (*SheetResult, error) {
	logger.Debug("fetching amdm page", zap.String("url", pageURL))

	html, err := p.client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	song, err := p.ParsePage(pageURL, html)
	if err != nil {
		logger.Warn("amdm page not parsed", zap.String("url", pageURL), zap.Error(err))
		return nil, err
	}

	logger.Debug("amdm page parsed", zap.String("slug", song.Slug), zap.Int("content_length", len(song.Content)))
	return &SheetResult{
		URL:       pageURL,
		Song:      song,
		FetchedAt: time.Now(),
	}, nil
}

// ParsePage extracts the song from already fetched HTML.
func (p *Parser) ParsePage(pageURL, html string) (songbook.Song, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return songbook.Song{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	block := doc.Find(chordsBlockSelector).First()
	if block.Length() == 0 {
		return songbook.Song{}, ErrChordsNotFound
	}

	content := p.processChordsBlock(block)
	if content == "" {
		return songbook.Song{}, fmt.Errorf("chords block of %s is empty", pageURL)
	}

	slug := SlugFromURL(pageURL)
	if slug == "" {
		return songbook.Song{}, fmt.Errorf("no slug in %q", pageURL)
	}
	title, artist := pageTitle(doc)
	if title == "" {
		title = slug
	}
	return songbook.Song{
		Slug:     slug,
		Title:    title,
		Artist:   artist,
		Tags:     []string{},
		Playlist: []string{},
		Content:  content,
	}, nil
}

// pageTitle reads the song heading. Microdata spans are preferred; a plain
// "Artist - Title" heading is split on the dash.
func pageTitle(doc *goquery.Document) (title, artist string) {
	h1 := doc.Find("h1").First()
	title = strings.TrimSpace(h1.Find(`[itemprop="name"]`).First().Text())
	artist = strings.TrimSpace(h1.Find(`[itemprop="byArtist"]`).First().Text())
	if title != "" {
		return title, artist
	}

	heading := strings.Join(strings.Fields(h1.Text()), " ")
	heading = strings.TrimSuffix(heading, ", аккорды")
	heading = strings.TrimSuffix(heading, " аккорды")
	for _, sep := range []string{" — ", " - "} {
		if a, t, ok := strings.Cut(heading, sep); ok {
			return strings.TrimSpace(t), strings.TrimSpace(a)
		}
	}
	return heading, ""
}

// SlugFromURL derives a file-safe slug from the last path segment.
func SlugFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
