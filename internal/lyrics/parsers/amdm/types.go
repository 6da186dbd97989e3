package amdm

import (
	"time"

	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/songbook"
)

// SheetResult is a chord sheet pulled from an AmDm page.
type SheetResult struct {
	URL       string        `json:"url"`
	Song      songbook.Song `json:"song"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// SectionType is a section marker as AmDm writes it, without brackets.
type SectionType string

const (
	SectionVerse  SectionType = "Куплет"
	SectionChorus SectionType = "Припев"
	SectionBridge SectionType = "Переход"
	SectionIntro  SectionType = "Вступление"
	SectionSolo   SectionType = "Проигрыш"
	SectionOutro  SectionType = "Кода"
)

// ProcessingConfig holds configuration for text processing
type ProcessingConfig struct {
	// KnownSections are the markers kept in the sheet. Other bracketed lines
	// are dropped.
	KnownSections []SectionType
	// MaxBlankLines caps runs of empty lines.
	MaxBlankLines int
	// Classifier decides which lines keep their indentation.
	Classifier chords.Classifier
}

func DefaultConfig() ProcessingConfig {
	return ProcessingConfig{
		KnownSections: []SectionType{SectionVerse, SectionChorus, SectionBridge, SectionIntro, SectionSolo, SectionOutro},
		MaxBlankLines: 1,
		Classifier:    chords.DefaultClassifier,
	}
}
