package gateway

import (
	"testing"
)

func TestParseEvaluationValid(t *testing.T) {
	raw := `{
		"scores": {"c-1": 3, "c-2": 4},
		"hard_fail_triggered": false,
		"notes": "Solid memo.",
		"limitations": ["no cost data"],
		"assumptions": ["current law holds"],
		"rationale": "Clear recommendation up front."
	}`
	ev := ParseEvaluation(raw)
	if ev.Scores["c-1"] != 3 || ev.Scores["c-2"] != 4 {
		t.Errorf("scores = %v", ev.Scores)
	}
	if ev.Notes != "Solid memo." || len(ev.Limitations) != 1 || len(ev.Assumptions) != 1 {
		t.Errorf("fields: %+v", ev)
	}
}

func TestParseEvaluationFenced(t *testing.T) {
	raw := "```json\n{\"notes\": \"ok\", \"hard_fail_triggered\": true}\n```"
	ev := ParseEvaluation(raw)
	if ev.Notes != "ok" || !ev.HardFailTriggered {
		t.Errorf("fenced parse: %+v", ev)
	}
}

func TestParseEvaluationMalformed(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "{\"scores\": "} {
		ev := ParseEvaluation(raw)
		if ev.Notes != "Error in evaluation parsing." {
			t.Errorf("raw %q: notes = %q", raw, ev.Notes)
		}
		if len(ev.Scores) != 0 || ev.HardFailTriggered {
			t.Errorf("raw %q: degraded payload should be empty: %+v", raw, ev)
		}
	}
}

func TestParseEvaluationPartial(t *testing.T) {
	ev := ParseEvaluation(`{"notes": "only notes"}`)
	if ev.Notes != "only notes" {
		t.Errorf("notes = %q", ev.Notes)
	}
	if ev.Scores != nil && len(ev.Scores) != 0 {
		t.Errorf("scores = %v", ev.Scores)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                   "{\"a\":1}",
		"```json\n{\"a\":1}\n```":     "{\"a\":1}",
		"```\n{\"a\":1}\n```":         "{\"a\":1}",
		"  \n```json\n{\"a\":1}\n```": "{\"a\":1}",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
