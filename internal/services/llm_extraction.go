package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/openai"
)

const extractionPrompt = `
You are an entity extraction assistant. Extract person names, location names, and meaningful words from the given text.

EXTRACTION RULES:

1. PERSONS: Extract all person names (first names, full names, nicknames)
   - Include name variants (Mike, Michael, etc.)
   - Return as array of strings: ["Mike", "Sarah Johnson"]

2. LOCATIONS: Extract all location names (cities, venues, businesses, addresses)
   - Include common variations (PizzaHut, Pizza Hut, etc.)
   - Return as array of strings: ["New York", "Pizza Hut", "Central Park"]

3. WORDS & PHRASES: Extract both individual meaningful words AND multi-word phrases
   - Include individual words: ["serendipitous", "ephemeral", "paradigm"]
   - Include meaningful phrases (2-4 words):
     * Common idioms: ["red herring", "wild goose chase", "piece of cake"]
     * Technical terms: ["quantum entanglement", "machine learning", "artificial intelligence"]
     * Proper nouns: ["Detroit Tigers", "New York Times", "United Nations"]
     * Compound concepts: ["supply chain", "climate change", "social media"]
   - EXCLUDE common stop words (the, a, an, I, you, he, she, it, we, they, as, at, by, for, from, in, into, of, on, to, with, is, was, are, were, be, been, being, have, has, had, do, does, did, will, would, should, could, may, might, can)
   - EXCLUDE person names or location names already extracted
   - EXCLUDE single letters or numbers
   - IMPORTANT: Prioritize extracting well-known phrases as complete units
     * If you see "red herring", extract it as ["red herring"] (NOT as ["red", "herring"])
     * If you see "wild goose chase", extract it as ["wild goose chase"] (NOT as ["wild", "goose", "chase"])
     * Common phrases should be kept together as single entries
   - Return as array of strings: ["delicious", "conversation", "red herring", "exciting"]

OUTPUT FORMAT (JSON only, no markdown):
{
  "persons": ["name1", "name2"],
  "locations": ["location1", "location2"],
  "words": ["word1", "word2"],
  "events": [],
  "organizations": [],
  "summaries": [],
  "follow_up_actions": [],
  "relationships": []
}

CONSTRAINTS:
- Return ONLY valid JSON
- No markdown, no code blocks, no explanations
- Extract actual words from the text, don't invent
- Be generous with extraction - when in doubt, include it
`

// extractionConfidence is the flat score given to extracted persons and
// locations; the extraction call carries no richer per-entity confidence yet.
const extractionConfidence = 0.8

// LLMExtractionService sends memory text to the provider and normalizes the
// response. Every failure mode degrades to the empty result: absence of a
// provider credential, an unparseable response and missing content all produce
// an ExtractionResult with empty slices rather than an error.
type LLMExtractionService interface {
	ExtractEntities(ctx context.Context, memoryText string) (ExtractionResult, openai.Usage)
	Model() string
}

type llmExtractionService struct {
	log    *logger.Logger
	client openai.Client
}

// NewLLMExtractionService accepts a nil client when no provider credential is
// configured.
func NewLLMExtractionService(client openai.Client, baseLog *logger.Logger) LLMExtractionService {
	return &llmExtractionService{
		log:    baseLog.With("service", "LLMExtractionService"),
		client: client,
	}
}

func (s *llmExtractionService) Model() string {
	if s.client == nil {
		return ""
	}
	return s.client.Model()
}

func (s *llmExtractionService) ExtractEntities(ctx context.Context, memoryText string) (ExtractionResult, openai.Usage) {
	if s.client == nil {
		s.log.Info("OpenAI not configured, returning empty extraction")
		return emptyExtractionResult(), openai.Usage{}
	}

	user := fmt.Sprintf("Extract entities from this text:\n\n%q", memoryText)
	content, usage, err := s.client.GenerateJSON(ctx, extractionPrompt, user)
	if err != nil {
		s.log.Error("LLM extraction failed", "error", err)
		return emptyExtractionResult(), usage
	}

	result, err := validateAndNormalize(content)
	if err != nil {
		s.log.Warn("Discarding unparseable extraction response", "error", err)
		return emptyExtractionResult(), usage
	}

	s.log.Info("Entity extraction completed",
		"persons_count", len(result.Persons),
		"locations_count", len(result.Locations),
		"words_count", len(result.Words),
	)
	return result, usage
}

// rawExtraction holds the untrusted provider payload. Each field is decoded
// independently so one malformed field degrades to empty without discarding
// the rest.
type rawExtraction struct {
	Persons         json.RawMessage `json:"persons"`
	Locations       json.RawMessage `json:"locations"`
	Words           json.RawMessage `json:"words"`
	Events          json.RawMessage `json:"events"`
	Organizations   json.RawMessage `json:"organizations"`
	Summaries       json.RawMessage `json:"summaries"`
	FollowUpActions json.RawMessage `json:"follow_up_actions"`
	Relationships   json.RawMessage `json:"relationships"`
}

func validateAndNormalize(content string) (ExtractionResult, error) {
	var raw rawExtraction
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return ExtractionResult{}, fmt.Errorf("parse extraction response: %w", err)
	}

	result := emptyExtractionResult()

	// Persons and locations arrive as plain name strings and are lifted into
	// entity records with a flat confidence score.
	for _, name := range decodeStrings(raw.Persons) {
		result.Persons = append(result.Persons, PersonExtraction{
			CanonicalName:   name,
			NameVariants:    []string{},
			ConfidenceScore: extractionConfidence,
		})
	}
	for _, name := range decodeStrings(raw.Locations) {
		result.Locations = append(result.Locations, LocationExtraction{
			Name:            name,
			ConfidenceScore: extractionConfidence,
		})
	}

	for _, w := range decodeStrings(raw.Words) {
		result.Words = append(result.Words, singularize(w))
	}

	decodeInto(raw.Events, &result.Events)
	decodeInto(raw.Organizations, &result.Organizations)
	decodeInto(raw.Summaries, &result.Summaries)
	decodeInto(raw.FollowUpActions, &result.FollowUpActions)
	decodeInto(raw.Relationships, &result.Relationships)

	return result, nil
}

func decodeStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeInto[T any](raw json.RawMessage, dst *[]T) {
	if len(raw) == 0 {
		return
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return
	}
	*dst = out
}
