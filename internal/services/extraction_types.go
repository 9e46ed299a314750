package services

// Entity shapes produced by the LLM extraction boundary. Only the fields the
// resolver consumes are modeled; the raw provider payload never crosses past
// validateAndNormalize.

type PersonExtraction struct {
	CanonicalName   string   `json:"canonical_name"`
	NameVariants    []string `json:"name_variants,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
}

type LocationExtraction struct {
	Name            string   `json:"name"`
	Address         string   `json:"address,omitempty"`
	City            string   `json:"city,omitempty"`
	State           string   `json:"state,omitempty"`
	Country         string   `json:"country,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
	Aliases         []string `json:"aliases,omitempty"`
}

type EventExtraction struct {
	Title           string  `json:"title"`
	EventType       string  `json:"event_type,omitempty"`
	StartDatetime   string  `json:"start_datetime,omitempty"`
	EndDatetime     string  `json:"end_datetime,omitempty"`
	Description     string  `json:"description,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type OrganizationExtraction struct {
	Name            string  `json:"name"`
	Type            string  `json:"type,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type RelationshipExtraction struct {
	SourceEntityID   string  `json:"source_entity_id"`
	SourceEntityType string  `json:"source_entity_type"`
	RelationshipType string  `json:"relationship_type"`
	TargetEntityID   string  `json:"target_entity_id"`
	TargetEntityType string  `json:"target_entity_type"`
	Confidence       float64 `json:"confidence"`
}

type SummaryExtraction struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type FollowUpAction struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

type ExtractionResult struct {
	Persons         []PersonExtraction       `json:"persons"`
	Events          []EventExtraction        `json:"events"`
	Locations       []LocationExtraction     `json:"locations"`
	Organizations   []OrganizationExtraction `json:"organizations"`
	Summaries       []SummaryExtraction      `json:"summaries"`
	FollowUpActions []FollowUpAction         `json:"follow_up_actions"`
	Relationships   []RelationshipExtraction `json:"relationships"`
	Words           []string                 `json:"words"`
}

func emptyExtractionResult() ExtractionResult {
	return ExtractionResult{
		Persons:         []PersonExtraction{},
		Events:          []EventExtraction{},
		Locations:       []LocationExtraction{},
		Organizations:   []OrganizationExtraction{},
		Summaries:       []SummaryExtraction{},
		FollowUpActions: []FollowUpAction{},
		Relationships:   []RelationshipExtraction{},
		Words:           []string{},
	}
}
