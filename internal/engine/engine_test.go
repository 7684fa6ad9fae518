package engine_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"polisee/internal/domain"
	"polisee/internal/engine"
	"polisee/internal/ledger"
	"polisee/internal/persist"
	"polisee/internal/store"
)

type memSaver struct {
	saved store.Snapshot
	calls int
	fail  bool
}

func (m *memSaver) Save(snap store.Snapshot) error {
	m.calls++
	if m.fail {
		return fmt.Errorf("%w: disk full", persist.ErrSave)
	}
	m.saved = snap
	return nil
}

type testEnv struct {
	Engine engine.Engine
	Store  *store.Store
	Saver  *memSaver
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	st := store.New(store.Empty())
	saver := &memSaver{}
	clock := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	eng := engine.New(st, saver)
	eng.Now = clock
	eng.Ledger = ledger.Writer{Now: clock}
	return testEnv{Engine: eng, Store: st, Saver: saver}
}

func TestCreateTaskDefaults(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(engine.TaskCreateOptions{})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Title != "Untitled Task" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Domain != domain.DomainEducation {
		t.Errorf("domain = %q", task.Domain)
	}
	if task.Jurisdiction != "General" {
		t.Errorf("jurisdiction = %q", task.Jurisdiction)
	}
	if task.DeliverableType != domain.DeliverableMemo {
		t.Errorf("deliverable = %q", task.DeliverableType)
	}
	if task.Difficulty != 1 {
		t.Errorf("difficulty = %d", task.Difficulty)
	}
	if task.Metadata == nil || task.Stakeholders == nil {
		t.Errorf("metadata/stakeholders should be non-nil")
	}
	if task.CreatedAt != "2024-01-01T00:00:00Z" || task.UpdatedAt != task.CreatedAt {
		t.Errorf("timestamps: created=%q updated=%q", task.CreatedAt, task.UpdatedAt)
	}
}

func TestCreateTaskLedgerEvent(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(engine.TaskCreateOptions{
		Title:        "Grid Resilience Investment",
		Domain:       domain.DomainClimate,
		Jurisdiction: "Federal (DOE)",
		Stakeholders: []domain.Stakeholder{
			{Name: "Utility Companies", Goal: "Reliability over renewables"},
		},
		Constraints:     domain.Constraints{Budget: "$5B Grant Program"},
		DeliverableType: domain.DeliverableBrief,
		Difficulty:      4,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	events := env.Store.Ledger()
	if len(events) != 1 {
		t.Fatalf("ledger length = %d, want 1", len(events))
	}
	evt := events[0]
	if evt.Type != domain.EventCreateTask {
		t.Errorf("event type = %q", evt.Type)
	}
	if evt.EntityType != domain.EntityTask || evt.EntityID != task.ID {
		t.Errorf("event entity = %q %q", evt.EntityType, evt.EntityID)
	}
	if evt.Summary != "Created task: Grid Resilience Investment" {
		t.Errorf("summary = %q", evt.Summary)
	}
	if env.Saver.calls != 1 {
		t.Errorf("saves = %d, want 1", env.Saver.calls)
	}
	if len(env.Saver.saved.Tasks) != 1 {
		t.Errorf("saved snapshot tasks = %d", len(env.Saver.saved.Tasks))
	}
}

func TestEditTaskMerge(t *testing.T) {
	env := newTestEnv(t)
	task, err := env.Engine.CreateTask(engine.TaskCreateOptions{
		Title:      "Original",
		Domain:     domain.DomainHousing,
		Difficulty: 3,
		PromptText: "Write a memo.",
	})
	if err != nil {
		t.Fatal(err)
	}
	env.Engine.Now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	title := "Revised"
	edited, err := env.Engine.EditTask(engine.TaskEditOptions{ID: task.ID, Title: &title})
	if err != nil {
		t.Fatalf("edit task: %v", err)
	}
	if edited.Title != "Revised" {
		t.Errorf("title = %q", edited.Title)
	}
	if edited.Domain != domain.DomainHousing || edited.Difficulty != 3 || edited.PromptText != "Write a memo." {
		t.Errorf("untouched fields changed: %+v", edited)
	}
	if edited.UpdatedAt != "2024-01-02T00:00:00Z" {
		t.Errorf("updated_at = %q", edited.UpdatedAt)
	}
	if edited.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Errorf("created_at = %q", edited.CreatedAt)
	}
	events := env.Store.Ledger()
	if len(events) != 2 || events[1].Type != domain.EventEditTask {
		t.Fatalf("events = %+v", events)
	}
	if events[1].Summary != "Updated task: Revised" {
		t.Errorf("summary = %q", events[1].Summary)
	}
}

func TestEditTaskNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.EditTask(engine.TaskEditOptions{ID: "t-missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if env.Saver.calls != 0 {
		t.Errorf("failed edit must not save")
	}
}

func TestCreateRubricDefaults(t *testing.T) {
	env := newTestEnv(t)
	r, err := env.Engine.CreateRubric(engine.RubricCreateOptions{})
	if err != nil {
		t.Fatalf("create rubric: %v", err)
	}
	if r.Name != "Untitled Rubric" || r.Type != "memo" {
		t.Errorf("defaults: name=%q type=%q", r.Name, r.Type)
	}
	if r.Criteria == nil || r.HardFails == nil || r.FailureModes == nil {
		t.Errorf("collections should be non-nil")
	}
}

func TestCreateRubricDuplicateCriteria(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.CreateRubric(engine.RubricCreateOptions{
		Criteria: []domain.RubricCriteria{
			{ID: "c-1", Label: "Clarity"},
			{ID: "c-1", Label: "Depth"},
		},
	})
	if err == nil {
		t.Fatal("expected duplicate criteria error")
	}
	if len(env.Store.Rubrics()) != 0 {
		t.Errorf("failed create must not mutate store")
	}
}

func TestRecordResponseRequiresTask(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.RecordResponse(engine.ResponseRecordOptions{TaskID: "t-missing", Text: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordResponseAndReview(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "Memo task"})
	rubric, _ := env.Engine.CreateRubric(engine.RubricCreateOptions{Name: "Standard"})

	res, err := env.Engine.RecordResponse(engine.ResponseRecordOptions{
		TaskID:    task.ID,
		ModelInfo: "gpt-4o-mini",
		Text:      "**TO:** Council",
	})
	if err != nil {
		t.Fatalf("record response: %v", err)
	}
	rev, err := env.Engine.RecordReview(engine.ReviewRecordOptions{
		ResponseID: res.ID,
		RubricID:   rubric.ID,
		Result: domain.Evaluation{
			Scores:    map[string]float64{"c-1": 3},
			Notes:     "Solid.",
			Rationale: "Clear recommendation.",
		},
	})
	if err != nil {
		t.Fatalf("record review: %v", err)
	}
	if rev.ResponseID != res.ID || rev.RubricID != rubric.ID {
		t.Errorf("linkage: %+v", rev)
	}
	if rev.Limitations == nil || rev.Assumptions == nil {
		t.Errorf("missing payload fields must default to empty slices")
	}
	events := env.Store.Ledger()
	// create task, create rubric, response, review
	if len(events) != 4 {
		t.Fatalf("ledger length = %d, want 4", len(events))
	}
	if events[2].Type != domain.EventGenerateResponse || events[3].Type != domain.EventScoreResponse {
		t.Errorf("event order: %q %q", events[2].Type, events[3].Type)
	}
	if events[3].Summary != "Evaluated work for task: Memo task" {
		t.Errorf("review summary = %q", events[3].Summary)
	}
}

func TestRecordReviewParseFailurePayload(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.CreateTask(engine.TaskCreateOptions{})
	rubric, _ := env.Engine.CreateRubric(engine.RubricCreateOptions{})
	res, _ := env.Engine.RecordResponse(engine.ResponseRecordOptions{TaskID: task.ID, Text: "x"})

	rev, err := env.Engine.RecordReview(engine.ReviewRecordOptions{
		ResponseID: res.ID,
		RubricID:   rubric.ID,
		Result:     domain.Evaluation{Notes: "Error in evaluation parsing."},
	})
	if err != nil {
		t.Fatalf("record review: %v", err)
	}
	if rev.Notes != "Error in evaluation parsing." {
		t.Errorf("notes = %q", rev.Notes)
	}
	if len(rev.Scores) != 0 || rev.HardFailTriggered {
		t.Errorf("degraded review should carry empty scores: %+v", rev)
	}
}

func TestRecordReviewUnknownRubric(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.CreateTask(engine.TaskCreateOptions{})
	res, _ := env.Engine.RecordResponse(engine.ResponseRecordOptions{TaskID: task.ID, Text: "x"})
	_, err := env.Engine.RecordReview(engine.ReviewRecordOptions{ResponseID: res.ID, RubricID: "r-missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateReviewsAllowed(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.CreateTask(engine.TaskCreateOptions{})
	rubric, _ := env.Engine.CreateRubric(engine.RubricCreateOptions{})
	res, _ := env.Engine.RecordResponse(engine.ResponseRecordOptions{TaskID: task.ID, Text: "x"})
	for i := 0; i < 2; i++ {
		if _, err := env.Engine.RecordReview(engine.ReviewRecordOptions{ResponseID: res.ID, RubricID: rubric.ID}); err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
	}
	if got := len(env.Store.ReviewsForResponse(res.ID)); got != 2 {
		t.Errorf("reviews = %d, want 2", got)
	}
}

func TestWriteReference(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "Zoning"})
	ref, err := env.Engine.WriteReference(engine.ReferenceWriteOptions{TaskID: task.ID, Text: "Exemplar memo."})
	if err != nil {
		t.Fatalf("write reference: %v", err)
	}
	if ref.Style != domain.StyleNeutral {
		t.Errorf("default style = %q", ref.Style)
	}
	if _, err := env.Engine.WriteReference(engine.ReferenceWriteOptions{TaskID: task.ID}); err == nil {
		t.Fatal("expected text-required error")
	}
}

func TestRecordExportEvent(t *testing.T) {
	env := newTestEnv(t)
	evt, err := env.Engine.RecordExport("csv")
	if err != nil {
		t.Fatalf("record export: %v", err)
	}
	if evt.Type != domain.EventExportDataset || evt.EntityType != domain.EntityDataset || evt.EntityID != "all" {
		t.Errorf("event = %+v", evt)
	}
	if evt.Summary != "Exported data as csv" {
		t.Errorf("summary = %q", evt.Summary)
	}
}

func TestEveryMutationAppendsExactlyOneEvent(t *testing.T) {
	env := newTestEnv(t)
	task, _ := env.Engine.CreateTask(engine.TaskCreateOptions{})
	rubric, _ := env.Engine.CreateRubric(engine.RubricCreateOptions{})
	res, _ := env.Engine.RecordResponse(engine.ResponseRecordOptions{TaskID: task.ID, Text: "x"})
	_, _ = env.Engine.RecordReview(engine.ReviewRecordOptions{ResponseID: res.ID, RubricID: rubric.ID})
	_, _ = env.Engine.WriteReference(engine.ReferenceWriteOptions{TaskID: task.ID, Text: "ref"})
	_, _ = env.Engine.RecordExport("json")
	title := "edited"
	_, _ = env.Engine.EditTask(engine.TaskEditOptions{ID: task.ID, Title: &title})
	if got := len(env.Store.Ledger()); got != 7 {
		t.Fatalf("ledger length = %d, want 7", got)
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	env := newTestEnv(t)
	env.Saver.fail = true
	task, err := env.Engine.CreateTask(engine.TaskCreateOptions{Title: "Still created"})
	if !errors.Is(err, persist.ErrSave) {
		t.Fatalf("err = %v, want ErrSave", err)
	}
	if task.ID == "" {
		t.Fatal("entity must be returned despite save failure")
	}
	if got, lookupErr := env.Store.TaskByID(task.ID); lookupErr != nil || got.Title != "Still created" {
		t.Errorf("in-memory mutation lost: %v", lookupErr)
	}
}
