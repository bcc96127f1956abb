package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/replay"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fuzzy_kart.db")
	last := flag.Int("last", 20, "number of most recent evaluations to export")
	version := flag.String("version", "", "version to export (default: active)")
	outPath := flag.String("out", "", "output fixture JSON path")
	withRules := flag.Bool("with-rules", true, "write the rule-base document next to the fixture")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--version id] [--with-rules=false]")
		os.Exit(2)
	}

	if err := run(*dbPath, *version, *last, *outPath, *withRules); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, versionID string, last int, outPath string, withRules bool) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	var rec store.Record
	if versionID == "" {
		rec, err = st.GetCurrent()
	} else {
		rec, err = st.GetVersion(versionID)
	}
	if err != nil {
		return fmt.Errorf("find version: %w", err)
	}

	entries, err := logging.ListEvaluations(st.DB(), rec.VersionID, last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no evaluations logged for version %s", rec.VersionID)
	}

	f := &replay.Fixture{
		Description: fmt.Sprintf("exported from %s, rule base %q (%s)", filepath.Base(dbPath), rec.Name, rec.VersionID),
		VersionID:   rec.VersionID,
		Tolerance:   replay.DefaultTolerance,
	}
	// Log is newest first; fixtures read chronologically.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		out := e.Outputs
		f.Cases = append(f.Cases, replay.NewFixtureCase(fmt.Sprintf("%s-%d", e.TriggerType, e.ID), e.Inputs, &out))
	}

	if withRules {
		rulesPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".rules." + string(rec.Format)
		if err := os.WriteFile(rulesPath, rec.Document, 0o644); err != nil {
			return fmt.Errorf("write rule base: %w", err)
		}
		f.RuleBase = filepath.Base(rulesPath)
	}

	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}
	fmt.Printf("Exported %d cases for version %s to %s\n", len(f.Cases), shortID(rec.VersionID), outPath)
	if f.RuleBase != "" {
		fmt.Printf("Rule base written to %s\n", filepath.Join(filepath.Dir(outPath), f.RuleBase))
	}
	return nil
}

// #endregion extract

// #region helpers

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion helpers
