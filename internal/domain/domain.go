package domain

// SchemaVersion tags exported datasets and their filenames.
const SchemaVersion = "polisee_schema_v1"

// Domain is the policy area a task belongs to.
type Domain string

const (
	DomainEducation      Domain = "education"
	DomainHousing        Domain = "housing"
	DomainHealth         Domain = "health"
	DomainClimate        Domain = "climate"
	DomainLabor          Domain = "labor"
	DomainTransportation Domain = "transportation"
	DomainElections      Domain = "elections"
	DomainEmergencyMgmt  Domain = "emergency_mgmt"
	DomainIntlRelations  Domain = "intl_relations"
	DomainTrade          Domain = "trade"
	DomainTechRegulation Domain = "tech_regulation"
)

// DeliverableType is the artifact format a task asks for.
type DeliverableType string

const (
	DeliverableMemo               DeliverableType = "memo"
	DeliverableBrief              DeliverableType = "brief"
	DeliverableStakeholderSummary DeliverableType = "stakeholder_summary"
	DeliverableOptionsMatrix      DeliverableType = "options_matrix"
	DeliverableEthicsReview       DeliverableType = "ethics_review"
)

// RubricTypeGeneral marks a rubric not tied to one deliverable type.
const RubricTypeGeneral = "general"

type Stakeholder struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
}

// Constraints is the sparse set of named constraint fields on a task.
// All fields are optional free text.
type Constraints struct {
	Budget               string `json:"budget,omitempty"`
	Timeline             string `json:"timeline,omitempty"`
	LegalLimits          string `json:"legal_limits,omitempty"`
	PoliticalFeasibility string `json:"political_feasibility,omitempty"`
	EquityImpacts        string `json:"equity_impacts,omitempty"`
	Sensitivity          string `json:"sensitivity,omitempty"`
}

// Task is a policy-analysis exercise definition.
// RubricID is a weak reference: it may point at a rubric that no longer
// exists and is resolved by best-effort lookup only.
type Task struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Domain          Domain          `json:"domain"`
	Jurisdiction    string          `json:"jurisdiction"`
	Stakeholders    []Stakeholder   `json:"stakeholders"`
	Constraints     Constraints     `json:"constraints"`
	DeliverableType DeliverableType `json:"deliverable_type"`
	Difficulty      int             `json:"difficulty"`
	PromptText      string          `json:"prompt_text"`
	RubricID        string          `json:"rubric_id,omitempty"`
	Metadata        map[string]any  `json:"metadata"`
	CreatedAt       string          `json:"created_at" format:"date-time"`
	UpdatedAt       string          `json:"updated_at" format:"date-time"`
}

type RubricLevel struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

type RubricCriteria struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Levels      []RubricLevel `json:"levels"`
}

type FailureMode struct {
	Mode    string `json:"mode"`
	Example string `json:"example"`
}

// Rubric is a grading standard. Criteria ids are unique within a rubric.
// Levels conventionally anchor at 0 (fail) and 4 (top) but this is not
// enforced.
type Rubric struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Criteria     []RubricCriteria `json:"criteria"`
	HardFails    []string         `json:"hard_fails"`
	FailureModes []FailureMode    `json:"failure_modes"`
	CreatedAt    string           `json:"created_at" format:"date-time"`
}

// Response is one generated artifact for one task. Immutable after creation.
type Response struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	ModelInfo string         `json:"model_info"`
	Text      string         `json:"text"`
	Seed      *int           `json:"seed,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	CreatedAt string         `json:"created_at" format:"date-time"`
}

// Review is one evaluation of one response against one rubric.
// Immutable after creation; duplicates under the same rubric are allowed.
type Review struct {
	ID                string             `json:"id"`
	ResponseID        string             `json:"response_id"`
	RubricID          string             `json:"rubric_id"`
	Scores            map[string]float64 `json:"scores"`
	HardFailTriggered bool               `json:"hard_fail_triggered"`
	Notes             string             `json:"notes"`
	Limitations       []string           `json:"limitations"`
	Assumptions       []string           `json:"assumptions"`
	Rationale         string             `json:"rationale"`
	CreatedAt         string             `json:"created_at" format:"date-time"`
}

// ReferenceStyle tags the register of a stored exemplar text.
type ReferenceStyle string

const (
	StyleNeutral  ReferenceStyle = "neutral"
	StyleStaffer  ReferenceStyle = "staffer"
	StyleBrief    ReferenceStyle = "brief"
	StyleOnePager ReferenceStyle = "one-pager"
)

// Reference is a stored exemplar text tied to a task.
type Reference struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	Text      string         `json:"text"`
	Style     ReferenceStyle `json:"style"`
	CreatedAt string         `json:"created_at" format:"date-time"`
}

// LedgerEventType is the closed set of recorded mutations.
type LedgerEventType string

const (
	EventCreateTask       LedgerEventType = "CREATE_TASK"
	EventEditTask         LedgerEventType = "EDIT_TASK"
	EventGenerateResponse LedgerEventType = "GENERATE_RESPONSE"
	EventCreateRubric     LedgerEventType = "CREATE_RUBRIC"
	EventScoreResponse    LedgerEventType = "SCORE_RESPONSE"
	EventWriteReference   LedgerEventType = "WRITE_REFERENCE"
	EventExportDataset    LedgerEventType = "EXPORT_DATASET"
)

// EntityType names the collection an event touched. "Dataset" is virtual
// and only appears on export events.
type EntityType string

const (
	EntityTask      EntityType = "Task"
	EntityRubric    EntityType = "Rubric"
	EntityResponse  EntityType = "Response"
	EntityReview    EntityType = "Review"
	EntityReference EntityType = "Reference"
	EntityDataset   EntityType = "Dataset"
)

// LedgerEvent is one immutable audit record. Patch is a semantically opaque
// snapshot/diff payload and is never interpreted by the core.
type LedgerEvent struct {
	ID         string          `json:"id"`
	TS         string          `json:"ts" format:"date-time"`
	Type       LedgerEventType `json:"type"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Summary    string          `json:"summary"`
	Patch      map[string]any  `json:"patch"`
}

// Label renders an event type for display. The switch is exhaustive on
// purpose: adding an event kind must be a compile-visible decision.
func (t LedgerEventType) Label() string {
	switch t {
	case EventCreateTask:
		return "task created"
	case EventEditTask:
		return "task edited"
	case EventGenerateResponse:
		return "response generated"
	case EventCreateRubric:
		return "rubric created"
	case EventScoreResponse:
		return "response scored"
	case EventWriteReference:
		return "reference written"
	case EventExportDataset:
		return "dataset exported"
	default:
		return string(t)
	}
}

// Evaluation is the partial payload returned by the evaluation gateway.
// Every field may be missing; consumers default rather than fail.
type Evaluation struct {
	Scores            map[string]float64 `json:"scores"`
	HardFailTriggered bool               `json:"hard_fail_triggered"`
	Notes             string             `json:"notes"`
	Limitations       []string           `json:"limitations"`
	Assumptions       []string           `json:"assumptions"`
	Rationale         string             `json:"rationale"`
}
