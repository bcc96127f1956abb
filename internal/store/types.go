package store

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
)

// #region version-record
// Record is one stored rule-base version. Document holds the source bytes
// exactly as imported so a version can be recompiled or exported later.
type Record struct {
	VersionID   string
	ParentID    string
	Name        string
	Format      ruleset.Format
	Document    []byte
	Checksum    string
	CreatedAt   time.Time
	MetricsJSON string
}

// Parse decodes the stored document.
func (r Record) Parse() (*ruleset.Document, error) {
	doc, err := ruleset.Parse(r.Document, r.Format)
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", r.VersionID, err)
	}
	return doc, nil
}

// Pipeline compiles the stored document and stamps it with the version id.
func (r Record) Pipeline() (*pipeline.Pipeline, error) {
	doc, err := r.Parse()
	if err != nil {
		return nil, err
	}
	p, err := doc.Compile()
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", r.VersionID, err)
	}
	return p.WithVersion(r.VersionID), nil
}

// #endregion version-record
