package sarif

import (
	"encoding/json"
	"testing"

	"github.com/circomspect-lang/circomspect-go/internal/report"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

func TestBuild_OneResultPerReportAndDedupedRules(t *testing.T) {
	lib := source.NewLibrary()
	id := lib.Add("a.circom", "signal input a;\n")
	span := source.Span{File: id, Line: 1, Column: 1}

	reports := report.Collection{
		report.New(report.SeverityWarning, "circom-dead-assignment", report.CategoryDeadAssignment, "first").
			WithPrimary(id, span, "here"),
		report.New(report.SeverityWarning, "circom-dead-assignment", report.CategoryDeadAssignment, "second").
			WithPrimary(id, span, "here too"),
		report.New(report.SeverityError, "circom-lift-failed", report.CategoryLifting, "third"),
	}

	doc := Build("circomspect-lint", reports, lib)

	if len(doc.Runs) != 1 {
		t.Fatalf("expected exactly one run, got %d", len(doc.Runs))
	}
	run := doc.Runs[0]
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("expected 2 deduped rules, got %d: %v", len(run.Tool.Driver.Rules), run.Tool.Driver.Rules)
	}
}

func TestBuild_LocationResolvesFromPrimaryOrSecondary(t *testing.T) {
	lib := source.NewLibrary()
	id := lib.Add("b.circom", "var x;\n")
	span := source.Span{File: id, Line: 2, Column: 3}

	withPrimary := report.New(report.SeverityWarning, "x", report.CategoryShadowing, "m").WithPrimary(id, span, "p")
	withSecondaryOnly := report.New(report.SeverityWarning, "y", report.CategoryShadowing, "m").WithSecondary(id, span, "s")
	withNeither := report.New(report.SeverityWarning, "z", report.CategoryShadowing, "m")

	doc := Build("tool", report.Collection{withPrimary, withSecondaryOnly, withNeither}, lib)
	results := doc.Runs[0].Results

	if len(results[0].Locations) != 1 || results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI != "b.circom" {
		t.Errorf("expected the primary-labeled report to resolve a location, got %+v", results[0])
	}
	if len(results[1].Locations) != 1 {
		t.Errorf("expected the secondary-only report to still resolve a location, got %+v", results[1])
	}
	if len(results[2].Locations) != 0 {
		t.Errorf("expected the label-less report to have no location, got %+v", results[2])
	}
}

func TestBuild_SeverityMapsToSarifLevel(t *testing.T) {
	cases := []struct {
		sev  report.Severity
		want string
	}{
		{report.SeverityError, "error"},
		{report.SeverityWarning, "warning"},
		{report.SeverityNote, "note"},
		{report.SeverityInfo, "note"},
	}
	for _, c := range cases {
		doc := Build("tool", report.Collection{report.New(c.sev, "id", report.CategoryShadowing, "m")}, nil)
		if got := doc.Runs[0].Results[0].Level; got != c.want {
			t.Errorf("severity %v mapped to level %q, want %q", c.sev, got, c.want)
		}
	}
}

func TestMarshal_ProducesValidJSON(t *testing.T) {
	doc := Build("tool", nil, nil)
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Marshal produced invalid JSON: %v", err)
	}
	if decoded["version"] != "2.1.0" {
		t.Errorf("version = %v, want 2.1.0", decoded["version"])
	}
}
