// Package sarif implements spec §6.4: serializing a report collection as a
// single-run, single-driver Sarif 2.1.0 document. There is no third-party
// Sarif library in the retrieval pack, so this is a minimal hand-written
// subset of the schema covering exactly the fields spec.md names; the
// document is marshaled with the standard library's encoding/json, matching
// the teacher's own internal/lsp wire types (plain structs with `json`
// tags, no code-generation step).
package sarif

import (
	"encoding/json"

	"github.com/circomspect-lang/circomspect-go/internal/report"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

const schemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// Document is the top-level Sarif log.
type Document struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

type Rule struct {
	ID string `json:"id"`
}

type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations,omitempty"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

type Region struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// severityLevel maps spec §6.2's severity onto Sarif's level vocabulary
// (error/warning/note); Sarif has no separate "info" level, so info reports
// fold into "note", the closest Sarif has to an informational result.
func severityLevel(s report.Severity) string {
	switch s {
	case report.SeverityError:
		return "error"
	case report.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// Build assembles a Document from reports, using lib to resolve each
// report's primary (or, lacking one, first secondary) label into a
// file-URI + line/column region.
func Build(toolName string, reports report.Collection, lib *source.Library) *Document {
	ruleSeen := map[string]bool{}
	var rules []Rule
	results := make([]Result, 0, len(reports))

	for _, r := range reports {
		if !ruleSeen[r.ID] {
			ruleSeen[r.ID] = true
			rules = append(rules, Rule{ID: r.ID})
		}
		result := Result{RuleID: r.ID, Level: severityLevel(r.Severity), Message: Message{Text: r.Message}}
		if loc, ok := buildLocation(r, lib); ok {
			result.Locations = []Location{loc}
		}
		results = append(results, result)
	}

	return &Document{
		Schema:  schemaURI,
		Version: "2.1.0",
		Runs: []Run{{
			Tool:    Tool{Driver: Driver{Name: toolName, Rules: rules}},
			Results: results,
		}},
	}
}

func buildLocation(r *report.Report, lib *source.Library) (Location, bool) {
	var file source.FileID
	var span source.Span
	switch {
	case r.Primary != nil:
		file, span = r.Primary.File, r.Primary.Span
	case len(r.Secondary) > 0:
		file, span = r.Secondary[0].File, r.Secondary[0].Span
	default:
		return Location{}, false
	}
	uri := ""
	if lib != nil {
		if f, err := lib.Get(file); err == nil {
			uri = f.Path
		}
	}
	return Location{PhysicalLocation: PhysicalLocation{
		ArtifactLocation: ArtifactLocation{URI: uri},
		Region:           Region{StartLine: span.Line, StartColumn: span.Column},
	}}, true
}

// Marshal renders d as indented JSON, matching spec §6.4's "document" output
// expectation for a file written via -s/--sarif-file.
func Marshal(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
