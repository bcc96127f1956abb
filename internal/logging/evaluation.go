package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
)

// #region log-evaluation
// LogEvaluation writes an entry to the evaluation_log table. NaN values are
// stored as JSON null.
func LogEvaluation(db *sql.DB, entry EvaluationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Decision == "" {
		entry.Decision, entry.Reason = Decide(entry.Outputs)
	}

	inputs, err := json.Marshal(nullable(entry.Inputs[:]))
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	outputs, err := json.Marshal(nullable(entry.Outputs[:]))
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	var firings any
	if fired := entry.Firings.Fired(); len(fired) > 0 {
		b, err := json.Marshal(fired)
		if err != nil {
			return fmt.Errorf("marshal firings: %w", err)
		}
		firings = string(b)
	}

	_, err = db.Exec(
		`INSERT INTO evaluation_log (version_id, trigger_type, inputs_json, outputs_json, firings_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		entry.TriggerType,
		string(inputs),
		string(outputs),
		firings,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log evaluation: %w", err)
	}
	return nil
}

// #endregion log-evaluation

// #region list-evaluations
// ListEvaluations returns the most recent entries, newest first. An empty
// versionID lists entries for every version.
func ListEvaluations(db *sql.DB, versionID string, limit int) ([]EvaluationEntry, error) {
	query := `SELECT id, version_id, trigger_type, inputs_json, outputs_json, firings_json, decision, reason, created_at
		FROM evaluation_log`
	args := []any{}
	if versionID != "" {
		query += ` WHERE version_id = ?`
		args = append(args, versionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var entries []EvaluationEntry
	for rows.Next() {
		var e EvaluationEntry
		var inputs, outputs, created string
		var firings, reason sql.NullString
		if err := rows.Scan(&e.ID, &e.VersionID, &e.TriggerType, &inputs, &outputs,
			&firings, &e.Decision, &reason, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := decodeFloats(inputs, e.Inputs[:]); err != nil {
			return nil, fmt.Errorf("entry %d inputs: %w", e.ID, err)
		}
		if err := decodeFloats(outputs, e.Outputs[:]); err != nil {
			return nil, fmt.Errorf("entry %d outputs: %w", e.ID, err)
		}
		if firings.Valid {
			var t inference.Trace
			if err := json.Unmarshal([]byte(firings.String), &t); err != nil {
				return nil, fmt.Errorf("entry %d firings: %w", e.ID, err)
			}
			e.Firings = t
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("entry %d created_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-evaluations

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}

func decodeFloats(s string, dst []float64) error {
	var vals []*float64
	if err := json.Unmarshal([]byte(s), &vals); err != nil {
		return err
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("%w: want %d values, got %d", fuzzy.ErrLengthMismatch, len(dst), len(vals))
	}
	for i, v := range vals {
		if v == nil {
			dst[i] = math.NaN()
			continue
		}
		dst[i] = *v
	}
	return nil
}

// #endregion helpers
