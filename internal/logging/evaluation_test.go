package logging

import (
	"database/sql"
	"math"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE evaluation_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		version_id   TEXT NOT NULL,
		trigger_type TEXT NOT NULL,
		inputs_json  TEXT NOT NULL,
		outputs_json TEXT NOT NULL,
		firings_json TEXT,
		decision     TEXT NOT NULL,
		reason       TEXT,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-evaluation-tests
func TestLogEvaluation_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := EvaluationEntry{
		VersionID:   "v1",
		TriggerType: TriggerTick,
		Inputs:      fuzzy.CrispInput{0.2, -1, -1, -1, 0},
		Outputs:     fuzzy.CrispOutput{1, 0},
		Firings: inference.Trace{
			{Rule: "IF ForwardDistance IS LN THEN ForwardBackwards IS LP", Output: "ForwardBackwards", State: "LP", Activation: 1},
			{Rule: "IF Speed IS LP THEN ForwardBackwards IS MN", Output: "ForwardBackwards", State: "MN", Activation: 0},
		},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogEvaluation(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var versionID, decision, firings string
	db.QueryRow("SELECT version_id, decision, firings_json FROM evaluation_log").Scan(&versionID, &decision, &firings)
	if versionID != "v1" {
		t.Errorf("expected version_id 'v1', got %q", versionID)
	}
	if decision != DecisionAct {
		t.Errorf("expected decision %q, got %q", DecisionAct, decision)
	}

	got, err := ListEvaluations(db, "", 10)
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Inputs != entry.Inputs || got[0].Outputs != entry.Outputs {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
	if len(got[0].Firings) != 1 {
		t.Errorf("expected only the positive firing to be stored, got %d", len(got[0].Firings))
	}
	if !got[0].CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("created_at = %v", got[0].CreatedAt)
	}
}

func TestLogEvaluation_NaNStoredAsNull(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := EvaluationEntry{
		VersionID:   "v2",
		TriggerType: TriggerRPC,
		Outputs:     fuzzy.CrispOutput{-0.5, math.NaN()},
	}
	if err := LogEvaluation(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var outputs, decision, reason string
	db.QueryRow("SELECT outputs_json, decision, reason FROM evaluation_log").Scan(&outputs, &decision, &reason)
	if outputs != "[-0.5,null]" {
		t.Errorf("expected NaN as null, got %s", outputs)
	}
	if decision != DecisionPartial {
		t.Errorf("expected partial decision, got %q", decision)
	}
	if reason != "no value for LeftRight" {
		t.Errorf("unexpected reason %q", reason)
	}

	got, _ := ListEvaluations(db, "v2", 1)
	if len(got) != 1 || !math.IsNaN(got[0].Outputs.Get(fuzzy.LeftRight)) {
		t.Fatalf("expected NaN to survive round trip, got %+v", got)
	}
}

func TestLogEvaluation_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	if err := LogEvaluation(db, EvaluationEntry{VersionID: "v3", TriggerType: TriggerReplay}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM evaluation_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogEvaluation_ExplicitDecisionKept(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := EvaluationEntry{
		VersionID:   "v4",
		TriggerType: TriggerTick,
		Outputs:     fuzzy.CrispOutput{math.NaN(), math.NaN()},
		Decision:    DecisionAct,
		Reason:      "override",
	}
	if err := LogEvaluation(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decision string
	var firings sql.NullString
	db.QueryRow("SELECT decision, firings_json FROM evaluation_log").Scan(&decision, &firings)
	if decision != DecisionAct {
		t.Errorf("expected caller decision to be kept, got %q", decision)
	}
	if firings.Valid {
		t.Errorf("expected NULL firings, got %q", firings.String)
	}
}

func TestLogEvaluation_ClosedDB(t *testing.T) {
	db := setupDB(t)
	db.Close()

	if err := LogEvaluation(db, EvaluationEntry{VersionID: "v", TriggerType: TriggerTick}); err == nil {
		t.Fatal("expected error on closed DB")
	}
}

// #endregion log-evaluation-tests

// #region list-evaluations-tests
func TestListEvaluations_FilterAndOrder(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	for i, v := range []string{"a", "b", "a", "a"} {
		e := EvaluationEntry{VersionID: v, TriggerType: TriggerTick, Outputs: fuzzy.CrispOutput{float64(i), 0}}
		if err := LogEvaluation(db, e); err != nil {
			t.Fatalf("log %d: %v", i, err)
		}
	}

	got, err := ListEvaluations(db, "a", 2)
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Outputs.Get(fuzzy.ForwardBackwards) != 3 || got[1].Outputs.Get(fuzzy.ForwardBackwards) != 2 {
		t.Errorf("expected newest first, got %v then %v", got[0].Outputs, got[1].Outputs)
	}
}

func TestListEvaluations_BadJSON(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	db.Exec(`INSERT INTO evaluation_log (version_id, trigger_type, inputs_json, outputs_json, decision, created_at)
		VALUES ('v', 'tick', 'not-json', '[0,0]', 'act', '2026-01-01T00:00:00Z')`)
	if _, err := ListEvaluations(db, "", 10); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestListEvaluations_WrongLength(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	db.Exec(`INSERT INTO evaluation_log (version_id, trigger_type, inputs_json, outputs_json, decision, created_at)
		VALUES ('v', 'tick', '[0,0,0,0,0]', '[0]', 'act', '2026-01-01T00:00:00Z')`)
	if _, err := ListEvaluations(db, "", 10); err == nil {
		t.Fatal("expected length error")
	}
}

func TestListEvaluations_BadTimestamp(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	db.Exec(`INSERT INTO evaluation_log (version_id, trigger_type, inputs_json, outputs_json, decision, created_at)
		VALUES ('v', 'tick', '[0,0,0,0,0]', '[0,0]', 'act', 'yesterday')`)
	_, err := ListEvaluations(db, "", 10)
	if err == nil || !strings.Contains(err.Error(), "created_at") {
		t.Fatalf("expected created_at error, got %v", err)
	}
}

// #endregion list-evaluations-tests

// #region decide-tests
func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		out  fuzzy.CrispOutput
		want string
	}{
		{"both valid", fuzzy.CrispOutput{0, 0}, DecisionAct},
		{"one missing", fuzzy.CrispOutput{math.NaN(), 1}, DecisionPartial},
		{"none", fuzzy.CrispOutput{math.NaN(), math.NaN()}, DecisionNoAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Decide(tt.out)
			if got != tt.want {
				t.Errorf("Decide(%v) = %q, want %q", tt.out, got, tt.want)
			}
		})
	}
}

// #endregion decide-tests
