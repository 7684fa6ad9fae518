package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"polisee/internal/domain"
	"polisee/internal/store"
)

// Filename builds the schema-tagged export filename.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("polisee_export_%s_%d.%s", domain.SchemaVersion, now.UTC().UnixMilli(), ext)
}

// WriteJSON writes the full aggregate, pretty-printed, and returns the
// path written.
func WriteJSON(dir string, snap store.Snapshot, now time.Time) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename("json", now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV flattens the aggregate to one row per entity. Structured fields
// collapse into a detail JSON column; the fixed columns carry the common
// identity and linkage.
func WriteCSV(dir string, snap store.Snapshot, now time.Time) (string, error) {
	path := filepath.Join(dir, Filename("csv", now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"record", "id", "related_id", "label", "created_at", "detail_json"}); err != nil {
		return "", err
	}
	for _, t := range snap.Tasks {
		if err := writeRow(w, "task", t.ID, t.RubricID, t.Title, t.CreatedAt, t); err != nil {
			return "", err
		}
	}
	for _, r := range snap.Rubrics {
		if err := writeRow(w, "rubric", r.ID, "", r.Name, r.CreatedAt, r); err != nil {
			return "", err
		}
	}
	for _, r := range snap.Responses {
		if err := writeRow(w, "response", r.ID, r.TaskID, r.ModelInfo, r.CreatedAt, r); err != nil {
			return "", err
		}
	}
	for _, r := range snap.Reviews {
		label := "hard_fail=" + strconv.FormatBool(r.HardFailTriggered)
		if err := writeRow(w, "review", r.ID, r.ResponseID, label, r.CreatedAt, r); err != nil {
			return "", err
		}
	}
	for _, r := range snap.References {
		if err := writeRow(w, "reference", r.ID, r.TaskID, string(r.Style), r.CreatedAt, r); err != nil {
			return "", err
		}
	}
	for _, e := range snap.Ledger {
		if err := writeRow(w, "ledger_event", e.ID, e.EntityID, e.Summary, e.TS, e); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func writeRow(w *csv.Writer, record, id, relatedID, label, createdAt string, detail any) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return w.Write([]string{record, id, relatedID, label, createdAt, string(detailJSON)})
}
