package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/openai"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

// mergeThreshold is the minimum similarity at which an extracted name is
// linked to an existing entity instead of creating a new one.
const mergeThreshold = 0.75

// EntityProcessorService reconciles extraction results into the shared entity
// store. One entity's failure never aborts its siblings; partial enrichment is
// acceptable.
type EntityProcessorService interface {
	ProcessExtractionResult(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID, extraction ExtractionResult) error
}

type entityProcessorService struct {
	log          *logger.Logger
	client       openai.Client
	memoryRepo   repos.MemoryRepo
	personRepo   repos.PersonRepo
	locationRepo repos.LocationRepo
	eventRepo    repos.EventRepo
	words        WordsService
	linkRepo     repos.MemoryWordLinkRepo
	now          func() time.Time
}

// NewEntityProcessorService accepts a nil client; location enrichment is then
// skipped.
func NewEntityProcessorService(client openai.Client, memoryRepo repos.MemoryRepo, personRepo repos.PersonRepo, locationRepo repos.LocationRepo, eventRepo repos.EventRepo, words WordsService, linkRepo repos.MemoryWordLinkRepo, baseLog *logger.Logger) EntityProcessorService {
	return &entityProcessorService{
		log:          baseLog.With("service", "EntityProcessorService"),
		client:       client,
		memoryRepo:   memoryRepo,
		personRepo:   personRepo,
		locationRepo: locationRepo,
		eventRepo:    eventRepo,
		words:        words,
		linkRepo:     linkRepo,
		now:          time.Now,
	}
}

func (s *entityProcessorService) ProcessExtractionResult(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID, extraction ExtractionResult) error {
	for _, person := range extraction.Persons {
		if err := s.createOrUpdatePerson(ctx, memoryID, person); err != nil {
			s.log.Error("Failed to process person entity", "error", err, "name", person.CanonicalName, "memory_id", memoryID)
		}
	}

	for _, location := range extraction.Locations {
		if err := s.createOrUpdateLocation(ctx, memoryID, location); err != nil {
			s.log.Error("Failed to process location entity", "error", err, "name", location.Name, "memory_id", memoryID)
		}
	}

	for _, word := range extraction.Words {
		if err := s.createOrLinkWord(ctx, memoryID, word); err != nil {
			s.log.Error("Failed to create/link word", "error", err, "word", word, "memory_id", memoryID)
		}
	}

	for _, event := range extraction.Events {
		if err := s.createEvent(ctx, memoryID, event); err != nil {
			s.log.Error("Failed to create event entity", "error", err, "title", event.Title, "memory_id", memoryID)
		}
	}

	for _, rel := range extraction.Relationships {
		// Relationship source/target IDs are extraction-local and have no stable
		// mapping to stored records yet.
		s.log.Debug("Relationship tracking noted",
			"relationship_type", rel.RelationshipType,
			"source_type", rel.SourceEntityType,
			"target_type", rel.TargetEntityType,
		)
	}

	blob := map[string]any{
		"extraction": map[string]any{
			"summaries":         extraction.Summaries,
			"follow_up_actions": extraction.FollowUpActions,
			"extracted_at":      s.now().UTC().Format(time.RFC3339),
			"words":             extraction.Words,
		},
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal extraction metadata: %w", err)
	}
	if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{
		"data": datatypes.JSON(raw),
	}); err != nil {
		return fmt.Errorf("store extraction metadata: %w", err)
	}

	s.log.Info("Entity extraction processing completed", "memory_id", memoryID)
	return nil
}

func (s *entityProcessorService) createOrUpdatePerson(ctx context.Context, memoryID uuid.UUID, person PersonExtraction) error {
	personName := strings.TrimSpace(person.CanonicalName)
	if personName == "" {
		return nil
	}

	existing, err := s.personRepo.GetAllNames(ctx, nil)
	if err != nil {
		return fmt.Errorf("load persons for matching: %w", err)
	}

	var matched *types.Person
	highestSimilarity := 0.0
	for _, candidate := range existing {
		similarity := calculateSimilarity(personName, candidate.DisplayName)
		if similarity > highestSimilarity && similarity >= mergeThreshold {
			highestSimilarity = similarity
			matched = candidate
		}
	}

	if matched != nil {
		if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{"person_id": matched.ID}); err != nil {
			return fmt.Errorf("link person to memory: %w", err)
		}
		s.log.Info("Linked similar person to memory (fuzzy match)",
			"person_id", matched.ID,
			"memory_id", memoryID,
			"matched_name", matched.DisplayName,
			"extracted_name", personName,
			"similarity", highestSimilarity,
		)
		return nil
	}

	created, err := s.personRepo.Create(ctx, nil, &types.Person{DisplayName: personName})
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{"person_id": created.ID}); err != nil {
		return fmt.Errorf("link person to memory: %w", err)
	}

	s.log.Info("Created new person entity", "name", personName)
	return nil
}

func (s *entityProcessorService) createOrUpdateLocation(ctx context.Context, memoryID uuid.UUID, location LocationExtraction) error {
	locationName := strings.TrimSpace(location.Name)
	if locationName == "" {
		return nil
	}

	existing, err := s.locationRepo.GetAllNames(ctx, nil)
	if err != nil {
		return fmt.Errorf("load locations for matching: %w", err)
	}

	var matched *types.Location
	highestSimilarity := 0.0
	for _, candidate := range existing {
		similarity := calculateSimilarity(locationName, candidate.Name)
		if similarity > highestSimilarity && similarity >= mergeThreshold {
			highestSimilarity = similarity
			matched = candidate
		}
	}

	if matched != nil {
		if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{"location_id": matched.ID}); err != nil {
			return fmt.Errorf("link location to memory: %w", err)
		}
		if matched.LastEnrichedAt == nil && s.client != nil {
			s.enrichLocation(ctx, matched.ID, locationName)
		}
		s.log.Info("Linked similar location to memory (fuzzy match)",
			"location_id", matched.ID,
			"memory_id", memoryID,
			"matched_name", matched.Name,
			"extracted_name", locationName,
			"similarity", highestSimilarity,
		)
		return nil
	}

	newLocation := &types.Location{
		Name:      locationName,
		Address:   optString(location.Address),
		City:      optString(location.City),
		State:     optString(location.State),
		Country:   optString(location.Country),
		PlaceType: "venue",
	}
	created, err := s.locationRepo.Create(ctx, nil, newLocation)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{"location_id": created.ID}); err != nil {
		return fmt.Errorf("link location to memory: %w", err)
	}

	if s.client != nil {
		s.enrichLocation(ctx, created.ID, locationName)
	}

	s.log.Info("Created new location entity", "name", locationName)
	return nil
}

// enrichLocation asks the provider for place details. Best effort: failures
// are logged and never surfaced.
func (s *entityProcessorService) enrichLocation(ctx context.Context, locationID uuid.UUID, locationName string) {
	prompt := fmt.Sprintf(`Provide information about the location %q in JSON format:
{
  "placeType": "Type of place (city, venue, business, restaurant, park, etc.)",
  "address": "Full address if known",
  "city": "City name",
  "state": "State/Province",
  "country": "Country"
}

Return ONLY valid JSON. If you don't know specific details, use null for that field.`, locationName)

	content, _, err := s.client.GenerateJSON(ctx,
		"You are a location information assistant. Always respond with valid JSON only.",
		prompt)
	if err != nil {
		s.log.Error("Failed to enrich location", "error", err, "name", locationName)
		return
	}

	var details struct {
		PlaceType *string `json:"placeType"`
		Address   *string `json:"address"`
		City      *string `json:"city"`
		State     *string `json:"state"`
		Country   *string `json:"country"`
	}
	if err := json.Unmarshal([]byte(content), &details); err != nil {
		s.log.Warn("Unparseable location enrichment response", "error", err, "name", locationName)
		return
	}

	placeType := "venue"
	if details.PlaceType != nil && strings.TrimSpace(*details.PlaceType) != "" {
		placeType = *details.PlaceType
	}
	fields := map[string]any{
		"place_type":       placeType,
		"address":          details.Address,
		"city":             details.City,
		"state":            details.State,
		"country":          details.Country,
		"last_enriched_at": s.now().UTC(),
	}
	if err := s.locationRepo.UpdateFields(ctx, nil, locationID, fields); err != nil {
		s.log.Error("Failed to store location enrichment", "error", err, "location_id", locationID)
		return
	}

	s.log.Info("Location enriched", "name", locationName, "location_id", locationID)
}

func (s *entityProcessorService) createOrLinkWord(ctx context.Context, memoryID uuid.UUID, wordText string) error {
	result, err := s.words.CreateOrFind(ctx, wordText)
	if err != nil {
		return err
	}

	exists, err := s.linkRepo.Exists(ctx, nil, memoryID, result.Word.ID)
	if err != nil {
		return fmt.Errorf("check word link: %w", err)
	}
	if exists {
		s.log.Debug("Word already linked to this memory", "word", wordText, "memory_id", memoryID)
		return nil
	}

	if _, err := s.linkRepo.Create(ctx, nil, &types.MemoryWordLink{
		MemoryID: memoryID,
		WordID:   result.Word.ID,
	}); err != nil {
		return fmt.Errorf("create word link: %w", err)
	}

	if result.Status == WordStatusExisting {
		s.log.Info("Linked to existing word", "word", wordText, "word_id", result.Word.ID, "memory_id", memoryID)
	} else {
		s.log.Info("Created new word and linked", "word", wordText, "word_id", result.Word.ID, "memory_id", memoryID)
	}
	return nil
}

func (s *entityProcessorService) createEvent(ctx context.Context, memoryID uuid.UUID, event EventExtraction) error {
	startAt := parseEventTime(event.StartDatetime)
	endAt := parseEventTime(event.EndDatetime)

	if _, err := s.eventRepo.Create(ctx, nil, &types.Event{
		MemoryID:    memoryID,
		StartAt:     startAt,
		EndAt:       endAt,
		Description: optString(event.Description),
	}); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	fields := map[string]any{}
	if strings.TrimSpace(event.Title) != "" {
		fields["title"] = event.Title
	}
	if strings.TrimSpace(event.Description) != "" {
		fields["body"] = event.Description
	}
	if startAt != nil {
		fields["start_at"] = *startAt
	}
	if endAt != nil {
		fields["end_at"] = *endAt
	}
	if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, fields); err != nil {
		return fmt.Errorf("update memory from event: %w", err)
	}

	s.log.Info("Created event entity", "title", event.Title)
	return nil
}

func parseEventTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func optString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
