package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"polisee/internal/domain"
	"polisee/internal/ledger"
	"polisee/internal/store"
)

// Saver persists the aggregate after each mutation. persist.Adapter is the
// production implementation.
type Saver interface {
	Save(store.Snapshot) error
}

// Engine is the mutation façade: every write updates one collection,
// appends exactly one ledger event, and saves the full snapshot. A failed
// save does not roll back the in-memory state; the error wraps the save
// failure and the caller decides how loudly to warn.
type Engine struct {
	Store  *store.Store
	Saver  Saver
	Ledger ledger.Writer
	Now    func() time.Time
}

func New(st *store.Store, saver Saver) Engine {
	return Engine{
		Store:  st,
		Saver:  saver,
		Ledger: ledger.Writer{Now: time.Now},
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) stamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

func (e Engine) save(snap store.Snapshot) error {
	if e.Saver == nil {
		return nil
	}
	return e.Saver.Save(snap)
}

// TaskCreateOptions are parameters for creating a task. Zero values get
// the documented defaults.
type TaskCreateOptions struct {
	Title           string
	Domain          domain.Domain
	Jurisdiction    string
	Stakeholders    []domain.Stakeholder
	Constraints     domain.Constraints
	DeliverableType domain.DeliverableType
	Difficulty      int
	PromptText      string
	RubricID        string
}

func (e Engine) CreateTask(opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		opts.Title = "Untitled Task"
	}
	if opts.Domain == "" {
		opts.Domain = domain.DomainEducation
	}
	if opts.Jurisdiction == "" {
		opts.Jurisdiction = "General"
	}
	if opts.DeliverableType == "" {
		opts.DeliverableType = domain.DeliverableMemo
	}
	if opts.Difficulty == 0 {
		opts.Difficulty = 1
	}
	if opts.Stakeholders == nil {
		opts.Stakeholders = []domain.Stakeholder{}
	}
	now := e.stamp()
	t := domain.Task{
		ID:              "t-" + uuid.NewString(),
		Title:           opts.Title,
		Domain:          opts.Domain,
		Jurisdiction:    opts.Jurisdiction,
		Stakeholders:    opts.Stakeholders,
		Constraints:     opts.Constraints,
		DeliverableType: opts.DeliverableType,
		Difficulty:      opts.Difficulty,
		PromptText:      opts.PromptText,
		RubricID:        opts.RubricID,
		Metadata:        map[string]any{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	evt := e.Ledger.Event(domain.EventCreateTask, domain.EntityTask, t.ID,
		fmt.Sprintf("Created task: %s", t.Title), ledger.Patch{"title": t.Title, "domain": t.Domain})
	snap := e.Store.Apply(func(s *store.Snapshot) {
		s.Tasks = append(s.Tasks, t)
		s.Ledger = append(s.Ledger, evt)
	})
	return t, e.save(snap)
}

// TaskEditOptions carries a sparse edit. Nil pointers leave the field
// untouched; the merge never clears a field back to its default.
type TaskEditOptions struct {
	ID              string
	Title           *string
	Domain          *domain.Domain
	Jurisdiction    *string
	Stakeholders    []domain.Stakeholder
	Constraints     *domain.Constraints
	DeliverableType *domain.DeliverableType
	Difficulty      *int
	PromptText      *string
	RubricID        *string
}

func (e Engine) EditTask(opts TaskEditOptions) (domain.Task, error) {
	t, err := e.Store.TaskByID(opts.ID)
	if err != nil {
		return domain.Task{}, err
	}
	if opts.Title != nil {
		t.Title = *opts.Title
	}
	if opts.Domain != nil {
		t.Domain = *opts.Domain
	}
	if opts.Jurisdiction != nil {
		t.Jurisdiction = *opts.Jurisdiction
	}
	if opts.Stakeholders != nil {
		t.Stakeholders = opts.Stakeholders
	}
	if opts.Constraints != nil {
		t.Constraints = *opts.Constraints
	}
	if opts.DeliverableType != nil {
		t.DeliverableType = *opts.DeliverableType
	}
	if opts.Difficulty != nil {
		t.Difficulty = *opts.Difficulty
	}
	if opts.PromptText != nil {
		t.PromptText = *opts.PromptText
	}
	if opts.RubricID != nil {
		t.RubricID = *opts.RubricID
	}
	t.UpdatedAt = e.stamp()
	evt := e.Ledger.Event(domain.EventEditTask, domain.EntityTask, t.ID,
		fmt.Sprintf("Updated task: %s", t.Title), ledger.Patch{"title": t.Title})
	snap := e.Store.Apply(func(s *store.Snapshot) {
		for i := range s.Tasks {
			if s.Tasks[i].ID == t.ID {
				s.Tasks[i] = t
				break
			}
		}
		s.Ledger = append(s.Ledger, evt)
	})
	return t, e.save(snap)
}

// RubricCreateOptions are parameters for creating a rubric.
type RubricCreateOptions struct {
	Name         string
	Type         string
	Criteria     []domain.RubricCriteria
	HardFails    []string
	FailureModes []domain.FailureMode
}

func (e Engine) CreateRubric(opts RubricCreateOptions) (domain.Rubric, error) {
	if opts.Name == "" {
		opts.Name = "Untitled Rubric"
	}
	if opts.Type == "" {
		opts.Type = string(domain.DeliverableMemo)
	}
	if opts.Criteria == nil {
		opts.Criteria = []domain.RubricCriteria{}
	}
	if opts.HardFails == nil {
		opts.HardFails = []string{}
	}
	if opts.FailureModes == nil {
		opts.FailureModes = []domain.FailureMode{}
	}
	seen := map[string]bool{}
	for _, c := range opts.Criteria {
		if seen[c.ID] {
			return domain.Rubric{}, fmt.Errorf("duplicate criteria id %s", c.ID)
		}
		seen[c.ID] = true
	}
	r := domain.Rubric{
		ID:           "r-" + uuid.NewString(),
		Name:         opts.Name,
		Type:         opts.Type,
		Criteria:     opts.Criteria,
		HardFails:    opts.HardFails,
		FailureModes: opts.FailureModes,
		CreatedAt:    e.stamp(),
	}
	evt := e.Ledger.Event(domain.EventCreateRubric, domain.EntityRubric, r.ID,
		fmt.Sprintf("Created rubric: %s", r.Name), ledger.Patch{"name": r.Name})
	snap := e.Store.Apply(func(s *store.Snapshot) {
		s.Rubrics = append(s.Rubrics, r)
		s.Ledger = append(s.Ledger, evt)
	})
	return r, e.save(snap)
}

// ResponseRecordOptions attach generated text to an existing task.
type ResponseRecordOptions struct {
	TaskID    string
	ModelInfo string
	Text      string
	Seed      *int
	Params    map[string]any
}

func (e Engine) RecordResponse(opts ResponseRecordOptions) (domain.Response, error) {
	t, err := e.Store.TaskByID(opts.TaskID)
	if err != nil {
		return domain.Response{}, err
	}
	r := domain.Response{
		ID:        "res-" + uuid.NewString(),
		TaskID:    t.ID,
		ModelInfo: opts.ModelInfo,
		Text:      opts.Text,
		Seed:      opts.Seed,
		Params:    opts.Params,
		CreatedAt: e.stamp(),
	}
	evt := e.Ledger.Event(domain.EventGenerateResponse, domain.EntityResponse, r.ID,
		fmt.Sprintf("Generated response for task: %s", t.Title), nil)
	snap := e.Store.Apply(func(s *store.Snapshot) {
		s.Responses = append(s.Responses, r)
		s.Ledger = append(s.Ledger, evt)
	})
	return r, e.save(snap)
}

// ReviewRecordOptions attach an evaluation result to an existing response.
// The evaluation payload is partial by contract: missing fields default.
type ReviewRecordOptions struct {
	ResponseID string
	RubricID   string
	Result     domain.Evaluation
}

func (e Engine) RecordReview(opts ReviewRecordOptions) (domain.Review, error) {
	res, err := e.Store.ResponseByID(opts.ResponseID)
	if err != nil {
		return domain.Review{}, err
	}
	if _, err := e.Store.RubricByID(opts.RubricID); err != nil {
		return domain.Review{}, fmt.Errorf("rubric %s: %w", opts.RubricID, err)
	}
	scores := opts.Result.Scores
	if scores == nil {
		scores = map[string]float64{}
	}
	limitations := opts.Result.Limitations
	if limitations == nil {
		limitations = []string{}
	}
	assumptions := opts.Result.Assumptions
	if assumptions == nil {
		assumptions = []string{}
	}
	rev := domain.Review{
		ID:                "rev-" + uuid.NewString(),
		ResponseID:        res.ID,
		RubricID:          opts.RubricID,
		Scores:            scores,
		HardFailTriggered: opts.Result.HardFailTriggered,
		Notes:             opts.Result.Notes,
		Limitations:       limitations,
		Assumptions:       assumptions,
		Rationale:         opts.Result.Rationale,
		CreatedAt:         e.stamp(),
	}
	summary := "Evaluated work"
	if t, err := e.Store.TaskByID(res.TaskID); err == nil {
		summary = fmt.Sprintf("Evaluated work for task: %s", t.Title)
	}
	evt := e.Ledger.Event(domain.EventScoreResponse, domain.EntityReview, rev.ID,
		summary, ledger.Patch{"scores": rev.Scores, "hard_fail_triggered": rev.HardFailTriggered})
	snap := e.Store.Apply(func(s *store.Snapshot) {
		s.Reviews = append(s.Reviews, rev)
		s.Ledger = append(s.Ledger, evt)
	})
	return rev, e.save(snap)
}

// ReferenceWriteOptions store an exemplar text against an existing task.
type ReferenceWriteOptions struct {
	TaskID string
	Text   string
	Style  domain.ReferenceStyle
}

func (e Engine) WriteReference(opts ReferenceWriteOptions) (domain.Reference, error) {
	t, err := e.Store.TaskByID(opts.TaskID)
	if err != nil {
		return domain.Reference{}, err
	}
	if opts.Text == "" {
		return domain.Reference{}, errors.New("text is required")
	}
	if opts.Style == "" {
		opts.Style = domain.StyleNeutral
	}
	ref := domain.Reference{
		ID:        "ref-" + uuid.NewString(),
		TaskID:    t.ID,
		Text:      opts.Text,
		Style:     opts.Style,
		CreatedAt: e.stamp(),
	}
	evt := e.Ledger.Event(domain.EventWriteReference, domain.EntityReference, ref.ID,
		fmt.Sprintf("Wrote reference for task: %s", t.Title), ledger.Patch{"style": ref.Style})
	snap := e.Store.Apply(func(s *store.Snapshot) {
		s.References = append(s.References, ref)
		s.Ledger = append(s.Ledger, evt)
	})
	return ref, e.save(snap)
}

// RecordExport appends the export audit event. The dataset itself is
// written by the export package; here only the ledger changes.
func (e Engine) RecordExport(format string) (domain.LedgerEvent, error) {
	evt := e.Ledger.Event(domain.EventExportDataset, domain.EntityDataset, "all",
		fmt.Sprintf("Exported data as %s", format), nil)
	snap := e.Store.Apply(func(s *store.Snapshot) {
		s.Ledger = append(s.Ledger, evt)
	})
	return evt, e.save(snap)
}
