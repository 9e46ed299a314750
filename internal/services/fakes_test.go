package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/openai"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

// fakeClock is a manually advanced clock shared between a service under test
// and the in-memory state store so TTL expiry can be simulated.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type storedValue struct {
	value     string
	expiresAt time.Time
}

// memStateStore is an in-memory StateStore with TTL semantics driven by an
// injected clock.
type memStateStore struct {
	mu     sync.Mutex
	now    func() time.Time
	values map[string]storedValue
	lists  map[string][]string
}

func newMemStateStore(now func() time.Time) *memStateStore {
	return &memStateStore{
		now:    now,
		values: map[string]storedValue{},
		lists:  map[string][]string{},
	}
}

func (s *memStateStore) live(key string) (storedValue, bool) {
	v, ok := s.values[key]
	if !ok {
		return storedValue{}, false
	}
	if !v.expiresAt.IsZero() && !s.now().Before(v.expiresAt) {
		delete(s.values, key)
		return storedValue{}, false
	}
	return v, true
}

func (s *memStateStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.live(key)
	if !ok {
		return "", false, nil
	}
	return v.value, true, nil
}

func (s *memStateStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := storedValue{value: value}
	if ttl > 0 {
		sv.expiresAt = s.now().Add(ttl)
	}
	s.values[key] = sv
	return nil
}

func (s *memStateStore) ExpireAt(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.live(key); ok {
		v.expiresAt = at
		s.values[key] = v
	}
	return nil
}

func (s *memStateStore) IncrByFloat(_ context.Context, key string, amount float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := amount
	if v, ok := s.live(key); ok {
		prev, err := strconv.ParseFloat(v.value, 64)
		if err != nil {
			return 0, err
		}
		total = prev + amount
	}
	s.values[key] = storedValue{value: strconv.FormatFloat(total, 'f', -1, 64)}
	return total, nil
}

func (s *memStateStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(key)
	return ok, nil
}

func (s *memStateStore) LPush(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append([]string{value}, s.lists[key]...)
	return nil
}

func (s *memStateStore) RPop(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	if len(list) == 0 {
		return "", false, nil
	}
	v := list[len(list)-1]
	s.lists[key] = list[:len(list)-1]
	return v, true, nil
}

func (s *memStateStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
		delete(s.lists, k)
	}
	return nil
}

func (s *memStateStore) listLen(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[key])
}

type fakeCostRecordRepo struct {
	mu        sync.Mutex
	records   []*types.CostRecord
	createErr error
}

func (r *fakeCostRecordRepo) Create(_ context.Context, _ *gorm.DB, rec *types.CostRecord) (*types.CostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	rec.ID = uuid.New()
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *fakeCostRecordRepo) CountSince(_ context.Context, _ *gorm.DB, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if !rec.Date.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeCostRecordRepo) GroupCountByOperationSince(_ context.Context, _ *gorm.DB, userID uuid.UUID, since time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.Date.Before(since) {
			out[rec.Operation]++
		}
	}
	return out, nil
}

type recordedAlert struct {
	channel  string
	severity string
	message  string
}

type fakeAlerting struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

func (a *fakeAlerting) Alert(_ context.Context, channel string, severity string, message string, _ map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, recordedAlert{channel: channel, severity: severity, message: message})
}

func (a *fakeAlerting) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

type fakeMemoryRepo struct {
	mu       sync.Mutex
	memories map[uuid.UUID]*types.Memory
	updates  map[uuid.UUID][]map[string]any
}

func newFakeMemoryRepo() *fakeMemoryRepo {
	return &fakeMemoryRepo{
		memories: map[uuid.UUID]*types.Memory{},
		updates:  map[uuid.UUID][]map[string]any{},
	}
}

func (r *fakeMemoryRepo) Create(_ context.Context, _ *gorm.DB, memory *types.Memory) (*types.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if memory.ID == uuid.Nil {
		memory.ID = uuid.New()
	}
	r.memories[memory.ID] = memory
	return memory, nil
}

func (r *fakeMemoryRepo) GetByID(_ context.Context, _ *gorm.DB, memoryID uuid.UUID) (*types.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memories[memoryID], nil
}

func (r *fakeMemoryRepo) UpdateFields(_ context.Context, _ *gorm.DB, memoryID uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[memoryID] = append(r.updates[memoryID], fields)
	return nil
}

// lastField returns the most recently written value for a field across all
// UpdateFields calls on one memory.
func (r *fakeMemoryRepo) lastField(memoryID uuid.UUID, field string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updates := r.updates[memoryID]
	for i := len(updates) - 1; i >= 0; i-- {
		if v, ok := updates[i][field]; ok {
			return v, true
		}
	}
	return nil, false
}

type fakePersonRepo struct {
	mu      sync.Mutex
	persons []*types.Person
}

func (r *fakePersonRepo) Create(_ context.Context, _ *gorm.DB, person *types.Person) (*types.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	person.ID = uuid.New()
	r.persons = append(r.persons, person)
	return person, nil
}

func (r *fakePersonRepo) GetAllNames(_ context.Context, _ *gorm.DB) ([]*types.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*types.Person, len(r.persons))
	copy(out, r.persons)
	return out, nil
}

type fakeLocationRepo struct {
	mu        sync.Mutex
	locations []*types.Location
	updates   map[uuid.UUID][]map[string]any
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{updates: map[uuid.UUID][]map[string]any{}}
}

func (r *fakeLocationRepo) Create(_ context.Context, _ *gorm.DB, location *types.Location) (*types.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	location.ID = uuid.New()
	r.locations = append(r.locations, location)
	return location, nil
}

func (r *fakeLocationRepo) GetAllNames(_ context.Context, _ *gorm.DB) ([]*types.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*types.Location, len(r.locations))
	copy(out, r.locations)
	return out, nil
}

func (r *fakeLocationRepo) UpdateFields(_ context.Context, _ *gorm.DB, locationID uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates[locationID] = append(r.updates[locationID], fields)
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*types.Event
}

func (r *fakeEventRepo) Create(_ context.Context, _ *gorm.DB, event *types.Event) (*types.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	r.events = append(r.events, event)
	return event, nil
}

type fakeWordRepo struct {
	mu        sync.Mutex
	words     map[string]*types.Word
	createErr error
	// missFirstGet makes the next N GetByText calls report absence, for
	// simulating a concurrent insert racing the lookup.
	missFirstGet int
}

func newFakeWordRepo() *fakeWordRepo {
	return &fakeWordRepo{words: map[string]*types.Word{}}
}

func (r *fakeWordRepo) Create(_ context.Context, _ *gorm.DB, word *types.Word) (*types.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.words[word.Text]; exists {
		return nil, fmt.Errorf("unique constraint violation on word.text")
	}
	word.ID = uuid.New()
	r.words[word.Text] = word
	return word, nil
}

func (r *fakeWordRepo) GetByText(_ context.Context, _ *gorm.DB, text string) (*types.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missFirstGet > 0 {
		r.missFirstGet--
		return nil, nil
	}
	return r.words[text], nil
}

type linkKey struct {
	memoryID uuid.UUID
	wordID   uuid.UUID
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[linkKey]struct{}
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: map[linkKey]struct{}{}}
}

func (r *fakeLinkRepo) Create(_ context.Context, _ *gorm.DB, link *types.MemoryWordLink) (*types.MemoryWordLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := linkKey{memoryID: link.MemoryID, wordID: link.WordID}
	if _, exists := r.links[key]; exists {
		return nil, fmt.Errorf("unique constraint violation on memory_word_link")
	}
	r.links[key] = struct{}{}
	link.ID = uuid.New()
	return link, nil
}

func (r *fakeLinkRepo) Exists(_ context.Context, _ *gorm.DB, memoryID uuid.UUID, wordID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.links[linkKey{memoryID: memoryID, wordID: wordID}]
	return ok, nil
}

func (r *fakeLinkRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.links)
}

// stubCircuitBreaker returns canned admission decisions.
type stubCircuitBreaker struct {
	decision AIDecision
	err      error
	recorded []string
}

func (s *stubCircuitBreaker) RecordAICost(_ context.Context, _ uuid.UUID, operation string, _ int, _ float64, _ string, _ *uuid.UUID) error {
	s.recorded = append(s.recorded, operation)
	return nil
}

func (s *stubCircuitBreaker) CanProcessAI(_ context.Context, _ uuid.UUID) (AIDecision, error) {
	if s.err != nil {
		return AIDecision{}, s.err
	}
	return s.decision, nil
}

func (s *stubCircuitBreaker) GetCircuitState(_ context.Context) (CircuitState, error) {
	return s.decision.CircuitState, nil
}

func (s *stubCircuitBreaker) SetCircuitState(_ context.Context, state CircuitState, _ time.Duration) error {
	s.decision.CircuitState = state
	return nil
}

func (s *stubCircuitBreaker) GetDailySpendSummary(_ context.Context) (DailySpendSummary, error) {
	return DailySpendSummary{CircuitState: s.decision.CircuitState}, nil
}

// fakeAIClient satisfies openai.Client with canned responses.
type fakeAIClient struct {
	jsonContent string
	jsonErr     error
	textContent string
	textErr     error
	embedErr    error
	usage       openai.Usage

	jsonCalls  int
	textCalls  int
	embedCalls int
}

func (c *fakeAIClient) GenerateJSON(_ context.Context, _ string, _ string) (string, openai.Usage, error) {
	c.jsonCalls++
	if c.jsonErr != nil {
		return "", c.usage, c.jsonErr
	}
	return c.jsonContent, c.usage, nil
}

func (c *fakeAIClient) GenerateText(_ context.Context, _ string, _ string) (string, openai.Usage, error) {
	c.textCalls++
	if c.textErr != nil {
		return "", c.usage, c.textErr
	}
	return c.textContent, c.usage, nil
}

func (c *fakeAIClient) Embed(_ context.Context, _ string) ([]float32, openai.Usage, error) {
	c.embedCalls++
	if c.embedErr != nil {
		return nil, c.usage, c.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, c.usage, nil
}

func (c *fakeAIClient) Model() string      { return "gpt-4o-mini" }
func (c *fakeAIClient) EmbedModel() string { return "text-embedding-3-small" }
