package report

import (
	"testing"

	"github.com/circomspect-lang/circomspect-go/internal/source"
)

func TestSeverity_Ordering(t *testing.T) {
	// spec §6.2's explicit, non-standard total order: info < warning < note < error.
	if !(SeverityInfo < SeverityWarning && SeverityWarning < SeverityNote && SeverityNote < SeverityError) {
		t.Fatalf("severity order violated: info=%d warning=%d note=%d error=%d",
			SeverityInfo, SeverityWarning, SeverityNote, SeverityError)
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"info": SeverityInfo, "warning": SeverityWarning, "note": SeverityNote, "error": SeverityError,
		"INFO": SeverityInfo, "ERROR": SeverityError,
	}
	for in, want := range cases {
		got, ok := ParseSeverity(in)
		if !ok || got != want {
			t.Errorf("ParseSeverity(%q) = (%v, %v), want (%v, true)", in, got, ok, want)
		}
	}
	if _, ok := ParseSeverity("bogus"); ok {
		t.Error("expected ParseSeverity to reject an unknown level")
	}
}

func TestCollection_Filter_BySeverity(t *testing.T) {
	c := Collection{
		New(SeverityInfo, "a", CategoryShadowing, "info msg"),
		New(SeverityWarning, "b", CategoryShadowing, "warning msg"),
		New(SeverityError, "c", CategoryShadowing, "error msg"),
	}
	filtered := c.Filter(SeverityWarning, nil)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 reports at or above warning, got %d", len(filtered))
	}
	for _, r := range filtered {
		if r.Severity < SeverityWarning {
			t.Errorf("report %q has severity below the filter floor", r.ID)
		}
	}
}

func TestCollection_Filter_Allowlist(t *testing.T) {
	c := Collection{
		New(SeverityWarning, "circom-dead-assignment", CategoryDeadAssignment, "msg"),
		New(SeverityWarning, "circom-shadowing-variable", CategoryShadowing, "msg"),
	}
	allow := map[string]bool{"circom-dead-assignment": true}
	filtered := c.Filter(SeverityInfo, allow)
	if len(filtered) != 1 || filtered[0].ID != "circom-shadowing-variable" {
		t.Fatalf("expected only the non-allowlisted report to survive, got %v", filtered)
	}
}

func TestReport_WithPrimarySecondaryNote(t *testing.T) {
	span := source.Span{Line: 3, Column: 5}
	r := New(SeverityWarning, "circom-shadowing-variable", CategoryShadowing, "shadowed").
		WithPrimary(1, span, "inner").
		WithSecondary(1, source.Span{Line: 1, Column: 1}, "outer").
		WithNote("consider renaming")

	if r.Primary == nil || r.Primary.Text != "inner" {
		t.Fatalf("expected a primary label, got %v", r.Primary)
	}
	if len(r.Secondary) != 1 || r.Secondary[0].Text != "outer" {
		t.Fatalf("expected one secondary label, got %v", r.Secondary)
	}
	if len(r.Notes) != 1 || r.Notes[0] != "consider renaming" {
		t.Fatalf("expected one note, got %v", r.Notes)
	}
}
