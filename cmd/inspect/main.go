package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fuzzy_kart.db")
	last := flag.Int("last", 20, "show N most recent versions")
	version := flag.String("version", "", "show single version detail")
	evals := flag.Int("evals", 10, "recent evaluations to show in detail mode")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/fuzzy_kart.db [--last N] [--version id] [--evals N] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *version != "" {
		err = runDetailMode(st, *version, *evals, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID string   `json:"version_id"`
	ParentID  string   `json:"parent_id,omitempty"`
	Name      string   `json:"name"`
	Format    string   `json:"format"`
	Active    bool     `json:"active"`
	Coverage  *float64 `json:"coverage,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	versions, err := st.ListVersions(last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}
	activeID := ""
	if cur, err := st.GetCurrent(); err == nil {
		activeID = cur.VersionID
	}

	// Store returns DESC, reverse for chronological.
	rows := make([]listRow, len(versions))
	for i, rec := range versions {
		row := listRow{
			VersionID: rec.VersionID,
			ParentID:  rec.ParentID,
			Name:      rec.Name,
			Format:    string(rec.Format),
			Active:    rec.VersionID == activeID,
			CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if res := parseEval(rec.MetricsJSON); res != nil {
			c := res.MeanCoverage()
			row.Coverage = &c
		}
		rows[len(versions)-1-i] = row
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-1s %-12s  %-12s  %-20s  %-6s  %8s  %s\n",
		"", "Version", "Parent", "Name", "Format", "Coverage", "Time")
	fmt.Printf("%-1s %-12s+-%-12s+-%-20s+-%-6s+-%8s+-%s\n",
		"", "------------", "------------", "--------------------", "------", "--------", "--------------------")
	for _, r := range rows {
		mark := ""
		if r.Active {
			mark = "*"
		}
		cov := "-"
		if r.Coverage != nil {
			cov = fmt.Sprintf("%.3f", *r.Coverage)
		}
		fmt.Printf("%-1s %-12s  %-12s  %-20s  %-6s  %8s  %s\n",
			mark, shortID(r.VersionID), shortID(r.ParentID), truncate(r.Name, 20), r.Format, cov, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID   string           `json:"version_id"`
	ParentID    string           `json:"parent_id,omitempty"`
	Name        string           `json:"name"`
	Format      string           `json:"format"`
	Checksum    string           `json:"checksum"`
	CreatedAt   string           `json:"created_at"`
	Simple      int              `json:"simple_rules"`
	Logical     int              `json:"logical_rules"`
	Method      string           `json:"method"`
	Eval        *eval.EvalResult `json:"eval,omitempty"`
	Evaluations []evalRow        `json:"evaluations"`
}

type evalRow struct {
	ID       int64               `json:"id"`
	Trigger  string              `json:"trigger"`
	Inputs   map[string]float64  `json:"inputs"`
	Outputs  map[string]*float64 `json:"outputs"`
	Fired    int                 `json:"fired"`
	Decision string              `json:"decision"`
	Reason   string              `json:"reason,omitempty"`
	Time     string              `json:"time"`
}

func runDetailMode(st *store.Store, versionID string, evals int, jsonOut bool) error {
	rec, err := st.GetVersion(versionID)
	if err != nil {
		return err
	}
	p, err := rec.Pipeline()
	if err != nil {
		return err
	}
	entries, err := logging.ListEvaluations(st.DB(), rec.VersionID, evals)
	if err != nil {
		return err
	}

	out := detailOutput{
		VersionID: rec.VersionID,
		ParentID:  rec.ParentID,
		Name:      rec.Name,
		Format:    string(rec.Format),
		Checksum:  rec.Checksum,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Simple:    len(p.Rules().Simple),
		Logical:   len(p.Rules().Logical),
		Method:    p.Method().String(),
		Eval:      parseEval(rec.MetricsJSON),
	}
	for _, e := range entries {
		out.Evaluations = append(out.Evaluations, evalRow{
			ID:       e.ID,
			Trigger:  e.TriggerType,
			Inputs:   e.Inputs.Map(),
			Outputs:  e.Outputs.Map(),
			Fired:    len(e.Firings),
			Decision: e.Decision,
			Reason:   e.Reason,
			Time:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:   %s\n", out.VersionID)
	fmt.Printf("Parent:    %s\n", orDash(out.ParentID))
	fmt.Printf("Name:      %s (%s)\n", out.Name, out.Format)
	fmt.Printf("Checksum:  %s\n", out.Checksum)
	fmt.Printf("Created:   %s\n", out.CreatedAt)
	fmt.Printf("Rules:     %d simple, %d logical\n", out.Simple, out.Logical)
	fmt.Printf("Method:    %s\n", out.Method)

	if out.Eval != nil {
		fmt.Printf("\nCoverage sweep (%d samples, passed=%v):\n", out.Eval.Samples, out.Eval.Passed)
		for _, o := range fuzzy.Outputs {
			fmt.Printf("  %-18s coverage %.3f  out-of-range %d\n",
				o, out.Eval.Coverage[o], out.Eval.OutOfRange[o])
		}
		if out.Eval.Reason != "" {
			fmt.Printf("  reason: %s\n", out.Eval.Reason)
		}
	}

	if len(out.Evaluations) == 0 {
		fmt.Println("\nNo evaluations logged.")
		return nil
	}
	fmt.Printf("\nRecent evaluations:\n")
	fmt.Printf("%-6s  %-7s  %-34s  %-16s  %5s  %s\n", "ID", "Trigger", "Inputs", "Outputs", "Fired", "Decision")
	for _, e := range entries {
		fmt.Printf("%-6d  %-7s  %-34s  %-16s  %5d  %s\n",
			e.ID, e.TriggerType, formatInputs(e.Inputs), formatOutputs(e.Outputs), len(e.Firings), e.Decision)
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func parseEval(s string) *eval.EvalResult {
	if s == "" {
		return nil
	}
	var r eval.EvalResult
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil
	}
	return &r
}

func formatInputs(in fuzzy.CrispInput) string {
	parts := make([]string, len(in))
	for i, v := range in {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(parts, " ")
}

func formatOutputs(out fuzzy.CrispOutput) string {
	parts := make([]string, len(out))
	for i, v := range out {
		if math.IsNaN(v) {
			parts[i] = "  -  "
		} else {
			parts[i] = fmt.Sprintf("%+.3f", v)
		}
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return orDash(id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "~"
	}
	return s
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers
