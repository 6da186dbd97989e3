package lyrics

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/lyrics/parsers/amdm"
	"github.com/sukalov/jamsheet/internal/songbook"
	"go.uber.org/zap"
)

// ImportResult is a song pulled from a chord site.
type ImportResult struct {
	URL       string        `json:"url"`
	Song      songbook.Song `json:"song"`
	Source    string        `json:"source"`
	FetchedAt time.Time     `json:"fetched_at"`
}

type amdmExtractor interface {
	ExtractSongFromAmdm(ctx context.Context, pageURL string) (*amdm.SheetResult, error)
}

// Service picks the parser for a chord sheet URL.
type Service struct {
	amdmParser amdmExtractor
}

func NewService() *Service {
	return &Service{amdmParser: amdm.NewParser()}
}

// NewServiceWith builds a service around a configured AmDm parser.
func NewServiceWith(parser *amdm.Parser) *Service {
	return &Service{amdmParser: parser}
}

// Import fetches the page behind rawURL and returns it as a song.
func (s *Service) Import(ctx context.Context, rawURL string) (*ImportResult, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "amdm.ru" || strings.HasSuffix(host, ".amdm.ru") {
		return s.importFromAmdm(ctx, u.String())
	}

	logger.Warn("unsupported import source", zap.String("url", rawURL))
	return nil, fmt.Errorf("unsupported URL source: %s", host)
}

func (s *Service) importFromAmdm(ctx context.Context, pageURL string) (*ImportResult, error) {
	result, err := s.amdmParser.ExtractSongFromAmdm(ctx, pageURL)
	if err != nil {
		logger.Error("amdm import failed", zap.String("url", pageURL), zap.Error(err))
		return nil, err
	}

	logger.Info("amdm import succeeded", zap.String("url", pageURL), zap.String("slug", result.Song.Slug))
	return &ImportResult{
		URL:       result.URL,
		Song:      result.Song,
		Source:    "amdm.ru",
		FetchedAt: result.FetchedAt,
	}, nil
}
