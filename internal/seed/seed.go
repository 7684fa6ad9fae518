package seed

import (
	"time"

	"polisee/internal/domain"
	"polisee/internal/ledger"
	"polisee/internal/store"
)

// Apply installs the starter templates when the task collection is empty.
// The guard is the task count alone, so emptying the task list brings the
// starters back on next startup. Returns true when seeding happened.
func Apply(st *store.Store, saver interface {
	Save(store.Snapshot) error
}, now func() time.Time) (bool, error) {
	if len(st.Tasks()) > 0 {
		return false, nil
	}
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	w := ledger.Writer{Now: now}
	evt := w.Event(domain.EventCreateTask, domain.EntityTask, "system",
		"Application initialized with starter templates", nil)
	snap := st.Apply(func(s *store.Snapshot) {
		s.Tasks = append(s.Tasks, starterTasks(ts)...)
		s.Rubrics = append(s.Rubrics, starterRubrics(ts)...)
		s.Ledger = append(s.Ledger, evt)
	})
	if saver == nil {
		return true, nil
	}
	return true, saver.Save(snap)
}

func starterTasks(ts string) []domain.Task {
	return []domain.Task{
		{
			ID:           "t-1",
			Title:        "Urban Housing Zoning Reform",
			Domain:       domain.DomainHousing,
			Jurisdiction: "City of Seattle",
			Stakeholders: []domain.Stakeholder{
				{Name: "Developers", Goal: "Maximize density and profit"},
				{Name: "Homeowners", Goal: "Preserve neighborhood character"},
			},
			Constraints: domain.Constraints{
				Budget:        "N/A",
				Timeline:      "Next legislative session",
				LegalLimits:   "State preemption laws on density",
				EquityImpacts: "Must address historical redlining",
			},
			DeliverableType: domain.DeliverableMemo,
			Difficulty:      3,
			PromptText:      "Draft a policy memo recommending zoning changes to increase middle housing near transit hubs.",
			Metadata:        map[string]any{},
			CreatedAt:       ts,
			UpdatedAt:       ts,
		},
		{
			ID:           "t-2",
			Title:        "Grid Resilience Investment",
			Domain:       domain.DomainClimate,
			Jurisdiction: "Federal (DOE)",
			Stakeholders: []domain.Stakeholder{
				{Name: "Utility Companies", Goal: "Reliability over renewables"},
				{Name: "Climate Advocates", Goal: "100% renewable by 2035"},
			},
			Constraints: domain.Constraints{
				Budget:               "$5B Grant Program",
				PoliticalFeasibility: "Must appeal to bipartisan infrastructure goals",
			},
			DeliverableType: domain.DeliverableBrief,
			Difficulty:      4,
			PromptText:      "Synthesize the conflicting goals of grid stability and rapid decarbonization for a Congressional subcommittee.",
			Metadata:        map[string]any{},
			CreatedAt:       ts,
			UpdatedAt:       ts,
		},
	}
}

func starterRubrics(ts string) []domain.Rubric {
	return []domain.Rubric{
		{
			ID:   "r-1",
			Name: "Standard Policy Memo Rubric",
			Type: string(domain.DeliverableMemo),
			Criteria: []domain.RubricCriteria{
				{
					ID:          "c-1",
					Label:       "Policy Clarity",
					Description: "Is the core recommendation easy to find?",
					Levels: []domain.RubricLevel{
						{Score: 0, Description: "No clear recommendation."},
						{Score: 4, Description: "Explicit recommendation with immediate rationale."},
					},
				},
				{
					ID:          "c-2",
					Label:       "Stakeholder Analysis",
					Description: "Does it address the stated stakeholders?",
					Levels: []domain.RubricLevel{
						{Score: 0, Description: "Ignores stakeholders."},
						{Score: 4, Description: "Nuanced trade-off analysis between all parties."},
					},
				},
			},
			HardFails: []string{"Illegal recommendation", "Factual hallucination"},
			FailureModes: []domain.FailureMode{
				{Mode: "Jargon-heavy", Example: "Using overly academic terms for a city council audience."},
			},
			CreatedAt: ts,
		},
	}
}
