package workflow

import (
	"fmt"

	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

// Edge declares the outgoing side of one status: who may move a report out of
// it, where it may go, and who may edit fields while the report sits there.
type Edge struct {
	CanSet  []Role
	Next    []Status
	CanEdit []Role
}

// Transition is the read-only view of a status node.
type Transition struct {
	From           Status   `json:"from"`
	CanSet         []Role   `json:"canSet"`
	Next           []Status `json:"next"`
	NextEditableBy []Role   `json:"nextEditableBy"`
	CanEdit        []Role   `json:"canEdit"`
}

type node struct {
	canSet         roleSet
	next           []Status
	nextSet        map[Status]struct{}
	canEdit        roleSet
	nextEditableBy roleSet
}

// Graph is an immutable status transition table for one report family.
type Graph struct {
	name     string
	statuses []Status
	nodes    map[Status]*node
}

// NewGraph builds a graph over statuses. Every status must carry an edge, every
// target must be a member, and terminal statuses (LOCKED, *_REJECTED) must be
// exactly those without targets. Violations panic: they are defects in the
// static tables, not runtime conditions.
func NewGraph(name string, statuses []Status, edges map[Status]Edge) *Graph {
	g := &Graph{name: name, statuses: append([]Status(nil), statuses...), nodes: make(map[Status]*node, len(statuses))}
	for _, s := range statuses {
		if !s.Valid() {
			panic(fmt.Sprintf("workflow: %s graph lists unknown status %q", name, s))
		}
		if _, dup := g.nodes[s]; dup {
			panic(fmt.Sprintf("workflow: %s graph lists %s twice", name, s))
		}
		e, ok := edges[s]
		if !ok {
			panic(fmt.Sprintf("workflow: %s graph has no edge for %s", name, s))
		}
		n := &node{
			canSet:  newRoleSet(e.CanSet...),
			next:    append([]Status(nil), e.Next...),
			nextSet: statusSet(e.Next...),
			canEdit: newRoleSet(e.CanEdit...),
		}
		g.nodes[s] = n
	}
	if len(edges) != len(statuses) {
		for s := range edges {
			if _, ok := g.nodes[s]; !ok {
				panic(fmt.Sprintf("workflow: %s graph has an edge for unlisted status %s", name, s))
			}
		}
	}
	for _, s := range statuses {
		n := g.nodes[s]
		if s.absorbing() {
			if len(n.next) > 0 || len(n.canSet) > 0 || len(n.canEdit) > 0 {
				panic(fmt.Sprintf("workflow: %s graph terminal status %s has outgoing rights", name, s))
			}
		} else {
			if len(n.next) == 0 {
				panic(fmt.Sprintf("workflow: %s graph status %s is a dead end", name, s))
			}
			if len(n.canSet) == 0 || len(n.canEdit) == 0 {
				panic(fmt.Sprintf("workflow: %s graph status %s has no actor", name, s))
			}
		}
		n.nextEditableBy = make(roleSet)
		for _, to := range n.next {
			target, ok := g.nodes[to]
			if !ok {
				panic(fmt.Sprintf("workflow: %s graph edge %s -> %s targets an unlisted status", name, s, to))
			}
			for r := range target.canEdit {
				n.nextEditableBy[r] = struct{}{}
			}
		}
	}
	return g
}

// Statuses returns the family's statuses in declaration order.
func (g *Graph) Statuses() []Status {
	return append([]Status(nil), g.statuses...)
}

// Contains reports whether s belongs to this family.
func (g *Graph) Contains(s Status) bool {
	_, ok := g.nodes[s]
	return ok
}

func (g *Graph) lookup(s Status) *node {
	n, ok := g.nodes[s]
	if !ok {
		panic(fmt.Sprintf("workflow: status %q is not part of the %s graph", s, g.name))
	}
	return n
}

// CanTransition reports whether role may move a report from one status to another.
func (g *Graph) CanTransition(role Role, from, to Status) bool {
	n := g.lookup(from)
	if _, ok := n.nextSet[to]; !ok {
		return false
	}
	return n.canSet.has(role)
}

// CheckTransition is CanTransition surfaced as an ErrInvalidTransition.
func (g *Graph) CheckTransition(role Role, from, to Status) error {
	if g.CanTransition(role, from, to) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("%s may not move a report from %s to %s", role, from, to))
}

// IsEditable reports whether role holds edit rights while a report sits in s.
func (g *Graph) IsEditable(role Role, s Status) bool {
	return g.lookup(s).canEdit.has(role)
}

// IsTerminal reports whether s has no outgoing edges.
func (g *Graph) IsTerminal(s Status) bool {
	return len(g.lookup(s).next) == 0
}

// Next returns every target reachable from s.
func (g *Graph) Next(s Status) []Status {
	return append([]Status(nil), g.lookup(s).next...)
}

// NextFor returns the targets role itself may choose from s.
func (g *Graph) NextFor(role Role, s Status) []Status {
	n := g.lookup(s)
	if !n.canSet.has(role) {
		return []Status{}
	}
	return append([]Status(nil), n.next...)
}

// Editors returns the roles holding edit rights in s.
func (g *Graph) Editors(s Status) []Role {
	return g.lookup(s).canEdit.sorted()
}

// Transition returns a copy of the node for s.
func (g *Graph) Transition(s Status) Transition {
	n := g.lookup(s)
	return Transition{
		From:           s,
		CanSet:         n.canSet.sorted(),
		Next:           append([]Status(nil), n.next...),
		NextEditableBy: n.nextEditableBy.sorted(),
		CanEdit:        n.canEdit.sorted(),
	}
}
