// Package rpcserver implements the optional JSON-RPC daemon mode listed in
// SPEC_FULL.md's domain-stack section: a long-lived process that accepts
// "lint" requests over stdio and returns the façade's reports as JSON. Each
// request parses its own text and builds a fresh façade with the four passes
// registered.
//
// It is grounded on the teacher's internal/haruspex/server, which frames
// JSON-RPC 2.0 messages over stdio by hand (Content-Length headers, a
// Server.Serve read loop, a Method-keyed dispatch in HandleMessage). Rather
// than reimplement that framing, the dispatch shape is kept but the framing
// and connection lifecycle are delegated to go.lsp.dev/jsonrpc2, the
// dependency consensys/go-corset carries for the same purpose.
package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.lsp.dev/jsonrpc2"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/passes"
	"github.com/circomspect-lang/circomspect-go/internal/report"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

// LintParams is the payload of a "lint" request.
type LintParams struct {
	Path  string `json:"path"`
	Text  string `json:"text"`
	Curve string `json:"curve"`
	Level string `json:"level"`
}

// LintResult mirrors report.Report in a stable wire shape; SARIF serves the
// file-output case (spec §6.4), this the daemon's request/response case.
type LintResult struct {
	Severity string `json:"severity"`
	ID       string `json:"id"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Serve blocks, handling "lint" requests arriving on rwc (conventionally
// stdio) until the connection closes.
func Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)
	conn.Go(ctx, handle)
	<-conn.Done()
	return conn.Err()
}

func handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if req.Method() != "lint" {
		return reply(ctx, nil, fmt.Errorf("rpcserver: unknown method %q", req.Method()))
	}

	var params LintParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("rpcserver: invalid params: %w", err))
	}

	results, err := lint(params)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, results, nil)
}

func lint(params LintParams) ([]LintResult, error) {
	curveName := params.Curve
	if curveName == "" {
		curveName = "BN128"
	}
	curve, err := field.ParseCurve(curveName)
	if err != nil {
		return nil, err
	}
	minSeverity := report.SeverityWarning
	if params.Level != "" {
		if sev, ok := report.ParseSeverity(params.Level); ok {
			minSeverity = sev
		}
	}

	lib := source.NewLibrary()
	fileID := lib.Add(params.Path, params.Text)

	p := astmodel.NewParser(fileID, params.Text)
	file := p.ParseFile()
	if len(p.Errors) > 0 {
		return nil, fmt.Errorf("rpcserver: parsing %s failed: %v", params.Path, p.Errors)
	}

	fctx := facade.New(lib, curve, file)
	fctx.RegisterPass(passes.Shadowing)
	fctx.RegisterPass(passes.DeadAssign)
	fctx.RegisterPass(passes.ConstCond)
	fctx.RegisterPass(passes.FieldArith)

	reports := fctx.Run().Filter(minSeverity, nil)
	out := make([]LintResult, 0, len(reports))
	for _, r := range reports {
		out = append(out, LintResult{
			Severity: r.Severity.String(),
			ID:       r.ID,
			Category: string(r.Category),
			Message:  r.Message,
		})
	}
	return out, nil
}
