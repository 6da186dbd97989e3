package songbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sukalov/jamsheet/internal/logger"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

var songExtensions = []string{".md", ".mdx"}

type frontMatter struct {
	Title      string   `yaml:"title"`
	Artist     string   `yaml:"artist,omitempty"`
	Difficulty string   `yaml:"difficulty,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Playlist   []string `yaml:"playlist,omitempty"`
}

// ParseMarkdown reads a song file: optional YAML front matter between "---"
// lines, then the sheet body.
func ParseMarkdown(slug string, data []byte) (Song, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var front frontMatter
	body := text
	if strings.HasPrefix(text, frontMatterDelimiter+"\n") {
		rest := text[len(frontMatterDelimiter)+1:]
		header, content, found := cutFrontMatter(rest)
		if !found {
			return Song{}, fmt.Errorf("song %s: unterminated front matter", slug)
		}
		if err := yaml.Unmarshal([]byte(header), &front); err != nil {
			return Song{}, fmt.Errorf("song %s: failed to parse front matter: %w", slug, err)
		}
		body = content
	}

	difficulty, err := ParseDifficulty(front.Difficulty)
	if err != nil {
		logger.Warn(fmt.Sprintf("song %s: %v, ignoring", slug, err))
	}

	song := Song{
		Slug:       slug,
		Title:      front.Title,
		Artist:     front.Artist,
		Difficulty: difficulty,
		Tags:       front.Tags,
		Playlist:   front.Playlist,
		Content:    body,
	}
	if song.Title == "" {
		song.Title = slug
	}
	if song.Tags == nil {
		song.Tags = []string{}
	}
	if song.Playlist == nil {
		song.Playlist = []string{}
	}
	return song, nil
}

// cutFrontMatter splits at the first line that is exactly the delimiter.
func cutFrontMatter(s string) (header, body string, found bool) {
	if strings.HasPrefix(s, frontMatterDelimiter+"\n") || s == frontMatterDelimiter {
		return "", strings.TrimPrefix(s[len(frontMatterDelimiter):], "\n"), true
	}
	idx := strings.Index(s, "\n"+frontMatterDelimiter+"\n")
	if idx < 0 {
		if strings.HasSuffix(s, "\n"+frontMatterDelimiter) {
			return s[:len(s)-len(frontMatterDelimiter)-1], "", true
		}
		return "", "", false
	}
	return s[:idx], s[idx+len(frontMatterDelimiter)+2:], true
}

// MarshalMarkdown writes song as a front-matter markdown file.
func MarshalMarkdown(song Song) ([]byte, error) {
	front := frontMatter{
		Title:      song.Title,
		Artist:     song.Artist,
		Difficulty: string(song.Difficulty),
		Tags:       song.Tags,
		Playlist:   song.Playlist,
	}
	header, err := yaml.Marshal(front)
	if err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelimiter + "\n")
	buf.Write(header)
	buf.WriteString(frontMatterDelimiter + "\n")
	buf.WriteString(song.Content)
	if !strings.HasSuffix(song.Content, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Dir is a Store backed by a directory of .md/.mdx files; the file name
// without extension is the slug.
type Dir struct {
	Path string
}

func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// Slugs lists the songs in the directory, sorted. A missing directory is an
// empty library.
func (d *Dir) Slugs() ([]string, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read songs directory: %w", err)
	}

	seen := make(map[string]bool)
	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		slug, ok := slugFromFile(entry.Name())
		if !ok || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func slugFromFile(name string) (string, bool) {
	ext := filepath.Ext(name)
	for _, e := range songExtensions {
		if ext == e {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

func validSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." && !strings.ContainsAny(slug, `/\`)
}

func (d *Dir) SongBySlug(ctx context.Context, slug string) (Song, error) {
	if !validSlug(slug) {
		return Song{}, ErrSongNotFound
	}
	for _, ext := range songExtensions {
		data, err := os.ReadFile(filepath.Join(d.Path, slug+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Song{}, fmt.Errorf("failed to read song %s: %w", slug, err)
		}
		return ParseMarkdown(slug, data)
	}
	return Song{}, ErrSongNotFound
}

// AllSongs loads every song in slug order. Files that fail to parse are
// logged and skipped.
func (d *Dir) AllSongs(ctx context.Context) ([]Song, error) {
	slugs, err := d.Slugs()
	if err != nil {
		return nil, err
	}

	songs := make([]Song, 0, len(slugs))
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		song, err := d.SongBySlug(ctx, slug)
		if err != nil {
			logger.LogWithErr(fmt.Sprintf("skipping song %s", slug), err)
			continue
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// Save writes song to <slug>.md, creating the directory when needed.
func (d *Dir) Save(song Song) (string, error) {
	if !validSlug(song.Slug) {
		return "", fmt.Errorf("invalid slug %q", song.Slug)
	}
	data, err := MarshalMarkdown(song)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create songs directory: %w", err)
	}
	path := filepath.Join(d.Path, song.Slug+".md")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write song file: %w", err)
	}
	return path, nil
}
