package cfgbuild

import (
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/lift"
)

// Build walks def's statement tree in source order and emits a finalized
// CFG, implementing spec §4.4's five numbered rules. The entry block is
// always index 0 and block indices never change after creation.
func Build(def *lift.Definition) *CFG {
	cfg := newCFG(def.Name, def.IsTemplate, def.Params)
	cfg.Shadows = def.Shadows
	entry := cfg.newBlock()
	buildStmts(cfg, def.Body, entry)
	return cfg
}

// buildStmts appends a straight-line run of stmts into cur, recursing into
// cfgbuild's own if/while handling whenever it meets one of lift's raw
// control-flow markers, and returns the block that control falls through to
// after the whole list — rule 1 and rule 4 of spec §4.4 (init statements,
// here represented the same as any other straight-line statement, simply
// flatten because they never change the cursor).
func buildStmts(cfg *CFG, stmts []ir.Stmt, cur *Block) *Block {
	for _, st := range stmts {
		if cond, thenBody, elseBody, hasElse, ok := lift.RawIf(st); ok {
			cur = buildIf(cfg, st, cond, thenBody, elseBody, hasElse, cur)
			continue
		}
		if cond, body, ok := lift.RawWhile(st); ok {
			cur = buildWhile(cfg, st, cond, body, cur)
			continue
		}
		if decl, ok := st.(*ir.Declaration); ok {
			cur.Stmts = append(cur.Stmts, decl)
			for _, n := range decl.Names {
				cfg.recordDecl(n, decl.Meta.Span, decl.Kind, decl.SignalKind, decl.Tags)
			}
			continue
		}
		cur.Stmts = append(cur.Stmts, st)
	}
	return cur
}

// buildIf implements rule 2.
func buildIf(cfg *CFG, raw ir.Stmt, cond ir.Expr, thenBody, elseBody []ir.Stmt, hasElse bool, cur *Block) *Block {
	header := &ir.IfHeader{Meta: *raw.Metadata(), Cond: cond, True: len(cfg.Blocks)}
	cur.Stmts = append(cur.Stmts, header)
	headerIdx := cur.Index

	thenBlock := cfg.newBlock()
	thenBlock.addPred(headerIdx)
	cur.addSucc(thenBlock.Index)
	thenExit := buildStmts(cfg, thenBody, thenBlock)

	var elseExit *Block
	if hasElse {
		elseBlock := cfg.newBlock()
		elseBlock.addPred(headerIdx)
		cur.addSucc(elseBlock.Index)
		header.False = elseBlock.Index
		header.HasFalse = true
		elseExit = buildStmts(cfg, elseBody, elseBlock)
	}

	next := cfg.newBlock()
	next.addPred(thenExit.Index)
	thenExit.addSucc(next.Index)
	if hasElse {
		next.addPred(elseExit.Index)
		elseExit.addSucc(next.Index)
	} else {
		next.addPred(headerIdx)
		cur.addSucc(next.Index)
		header.False = next.Index
		header.HasFalse = true
	}
	return next
}

// buildWhile implements rule 3.
func buildWhile(cfg *CFG, raw ir.Stmt, cond ir.Expr, body []ir.Stmt, cur *Block) *Block {
	header := cfg.newBlock()
	cur.addSucc(header.Index)
	header.addPred(cur.Index)

	bodyBlock := cfg.newBlock()
	bodyHeader := &ir.IfHeader{Meta: *raw.Metadata(), Cond: cond, True: bodyBlock.Index}
	header.Stmts = append(header.Stmts, bodyHeader)
	header.addSucc(bodyBlock.Index)
	bodyBlock.addPred(header.Index)

	bodyExit := buildStmts(cfg, body, bodyBlock)
	bodyExit.addSucc(header.Index)
	header.addPred(bodyExit.Index)

	next := cfg.newBlock()
	next.addPred(header.Index)
	header.addSucc(next.Index)
	bodyHeader.False = next.Index
	bodyHeader.HasFalse = true
	return next
}
