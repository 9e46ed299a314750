package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

const (
	WordStatusExisting = "existing"
	WordStatusCreated  = "created"
)

type CreateOrFindResult struct {
	Word   *types.Word `json:"word"`
	Status string      `json:"status"`
}

// WordsService is the word catalog: create-if-absent, return existing otherwise.
type WordsService interface {
	CreateOrFind(ctx context.Context, text string) (CreateOrFindResult, error)
}

type wordsService struct {
	log      *logger.Logger
	wordRepo repos.WordRepo
}

func NewWordsService(wordRepo repos.WordRepo, baseLog *logger.Logger) WordsService {
	return &wordsService{
		log:      baseLog.With("service", "WordsService"),
		wordRepo: wordRepo,
	}
}

func (s *wordsService) CreateOrFind(ctx context.Context, text string) (CreateOrFindResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CreateOrFindResult{}, fmt.Errorf("empty word text")
	}

	existing, err := s.wordRepo.GetByText(ctx, nil, trimmed)
	if err != nil {
		return CreateOrFindResult{}, fmt.Errorf("find word: %w", err)
	}
	if existing != nil {
		return CreateOrFindResult{Word: existing, Status: WordStatusExisting}, nil
	}

	created, err := s.wordRepo.Create(ctx, nil, &types.Word{Text: trimmed})
	if err != nil {
		// A concurrent insert may have won the unique-index race.
		if again, findErr := s.wordRepo.GetByText(ctx, nil, trimmed); findErr == nil && again != nil {
			return CreateOrFindResult{Word: again, Status: WordStatusExisting}, nil
		}
		return CreateOrFindResult{}, fmt.Errorf("create word: %w", err)
	}

	return CreateOrFindResult{Word: created, Status: WordStatusCreated}, nil
}
