package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"modlet-tools/internal/shared"
	"modlet-tools/internal/types"
)

// Outcome is the per-operation result surfaced to the orchestrator.
type Outcome struct {
	Kind   types.OutcomeKind
	Reason string
}

func applied() Outcome { return Outcome{Kind: types.OutcomeApplied} }

func noMatch() Outcome { return Outcome{Kind: types.OutcomeNoMatch} }

func conflict(reason string) Outcome {
	return Outcome{Kind: types.OutcomeConflict, Reason: reason}
}

func opError(reason string) Outcome {
	return Outcome{Kind: types.OutcomeError, Reason: reason}
}

// Apply executes one operation against the document, fanning out over every
// node the path resolves to. Zero live matches with at least one tombstone
// match is a Conflict; zero matches anywhere is NoMatch. Structurally invalid
// operations fail before any resolution is attempted.
func Apply(doc *Document, op types.PatchOperation) Outcome {
	if reason := validateOperation(op); reason != "" {
		return opError(reason)
	}

	targets := Resolve(doc, op.Path)
	if len(targets) == 0 {
		if ghosts := resolveWithRemoved(doc, op.Path); len(ghosts) > 0 {
			return conflict(fmt.Sprintf("target of %s was removed earlier in this run", op.Path))
		}
		return noMatch()
	}
	log.Debug().
		Str("op", string(op.Kind)).
		Str("path", op.Path.Raw).
		Int("matches", len(targets)).
		Msg("applying patch operation")

	for _, target := range targets {
		if outcome := applyToNode(doc, op, target); outcome.Kind != types.OutcomeApplied {
			return outcome
		}
	}
	return applied()
}

func validateOperation(op types.PatchOperation) string {
	if op.Path.IsZero() {
		return "operation has no path expression"
	}
	switch op.Kind {
	case types.OpSetAttribute, types.OpRemoveAttribute:
		if strings.TrimSpace(op.Attr) == "" {
			return fmt.Sprintf("%s requires a non-empty attribute name", op.Kind)
		}
	case types.OpAppend, types.OpInsertBefore, types.OpInsertAfter:
		if len(op.Fragment) == 0 {
			return fmt.Sprintf("%s requires replacement content", op.Kind)
		}
	case types.OpCsv:
		if op.CsvOp != types.CsvAdd && op.CsvOp != types.CsvRemove {
			return fmt.Sprintf("csv op must be add or remove, got %q", op.CsvOp)
		}
	case types.OpSet, types.OpRemove:
	default:
		return fmt.Sprintf("unknown operation kind %q", op.Kind)
	}
	return ""
}

func applyToNode(doc *Document, op types.PatchOperation, target types.NodeID) Outcome {
	switch op.Kind {
	case types.OpAppend:
		frag, err := ParseFragment(op.Fragment)
		if err != nil {
			return opError(err.Error())
		}
		if err := doc.AppendChild(target, frag); err != nil {
			return opError(err.Error())
		}
	case types.OpInsertBefore, types.OpInsertAfter:
		return insertSibling(doc, op, target)
	case types.OpSet:
		if err := doc.SetText(target, op.Value); err != nil {
			return opError(err.Error())
		}
	case types.OpSetAttribute:
		if err := doc.SetAttr(target, op.Attr, op.Value); err != nil {
			return opError(err.Error())
		}
	case types.OpRemove:
		if err := doc.RemoveNode(target); err != nil {
			return opError(err.Error())
		}
	case types.OpRemoveAttribute:
		if err := doc.RemoveAttr(target, op.Attr); err != nil {
			return opError(err.Error())
		}
	case types.OpCsv:
		return applyCsv(doc, op, target)
	}
	return applied()
}

// insertSibling places the fragment immediately before or after the
// reference node in its parent's child sequence.
func insertSibling(doc *Document, op types.PatchOperation, target types.NodeID) Outcome {
	parent, ok := doc.Parent(target)
	if !ok || parent == types.DocumentRoot {
		return opError("cannot insert a sibling of the document root")
	}
	index, err := doc.LiveIndex(parent, target)
	if err != nil {
		return opError(err.Error())
	}
	if op.Kind == types.OpInsertAfter {
		index++
	}
	frag, err := ParseFragment(op.Fragment)
	if err != nil {
		return opError(err.Error())
	}
	if err := doc.InsertChildAt(parent, index, frag); err != nil {
		return opError(err.Error())
	}
	return applied()
}

// applyCsv edits the target's text as a delimited value list: add appends
// values not already present, remove deletes matching values.
func applyCsv(doc *Document, op types.PatchOperation, target types.NodeID) Outcome {
	view, ok := doc.Node(target)
	if !ok {
		return opError(fmt.Sprintf("node does not exist: %d", target))
	}
	delim := op.CsvDelim
	if delim == "" {
		delim = ","
	}
	current := shared.SplitList(view.Text, delim)
	edits := shared.SplitList(op.Value, delim)
	switch op.CsvOp {
	case types.CsvAdd:
		for _, value := range edits {
			if !containsValue(current, value) {
				current = append(current, value)
			}
		}
	case types.CsvRemove:
		var kept []string
		for _, value := range current {
			if !containsValue(edits, value) {
				kept = append(kept, value)
			}
		}
		current = kept
	}
	if err := doc.SetText(target, strings.Join(current, delim)); err != nil {
		return opError(err.Error())
	}
	return applied()
}

func containsValue(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
