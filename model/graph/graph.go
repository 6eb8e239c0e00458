// Package graph defines the workflow topology: named nodes, static successor
// edges and conditional routers. The topology is fixed before execution
// starts; Compile validates it and every malformed construct (dangling edge,
// unknown node name, missing terminal, cycle) fails the whole run before the
// first node executes.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/pullwise/pullwise/model/state"
)

// Terminal is the sentinel successor name marking an explicit exit. Routers
// signal the same through End().
const Terminal = "__end__"

// NodeFunc is a unit of work. It receives a read-only snapshot of the shared
// state and returns a sparse delta touching only the fields it is responsible
// for. Side effects on external collaborators are permitted but opaque to the
// engine.
type NodeFunc func(ctx context.Context, s state.State) (state.Delta, error)

// RouterFunc computes the successor set for the current state.
type RouterFunc func(s state.State) Route

type router struct {
	fn      RouterFunc
	targets map[string]bool // declared reachable successors
}

// Graph is a builder for a workflow topology. Builder calls collect errors
// which surface at Compile so that assembly reads declaratively.
type Graph struct {
	nodes   map[string]NodeFunc
	edges   map[string]string
	routers map[string]router
	entry   string
	errs    []error
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   map[string]NodeFunc{},
		edges:   map[string]string{},
		routers: map[string]router{},
	}
}

// AddNode registers a named node.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	if name == "" || name == Terminal {
		g.errs = append(g.errs, fmt.Errorf("invalid node name %q", name))
		return g
	}
	if fn == nil {
		g.errs = append(g.errs, fmt.Errorf("node %q has no implementation", name))
		return g
	}
	if _, ok := g.nodes[name]; ok {
		g.errs = append(g.errs, fmt.Errorf("node %q already registered", name))
		return g
	}
	g.nodes[name] = fn
	return g
}

// AddEdge declares a static successor. Use Terminal as the destination to
// mark an explicit exit.
func (g *Graph) AddEdge(from, to string) *Graph {
	if _, ok := g.edges[from]; ok {
		g.errs = append(g.errs, fmt.Errorf("node %q already has a successor", from))
		return g
	}
	if _, ok := g.routers[from]; ok {
		g.errs = append(g.errs, fmt.Errorf("node %q already has a router", from))
		return g
	}
	g.edges[from] = to
	return g
}

// AddRouter attaches a conditional routing function to a node. The declared
// targets enumerate every successor the router may return; they are validated
// ahead of the run so a typo fails fast instead of mid-run.
func (g *Graph) AddRouter(from string, fn RouterFunc, targets ...string) *Graph {
	if _, ok := g.edges[from]; ok {
		g.errs = append(g.errs, fmt.Errorf("node %q already has a successor", from))
		return g
	}
	if _, ok := g.routers[from]; ok {
		g.errs = append(g.errs, fmt.Errorf("node %q already has a router", from))
		return g
	}
	if fn == nil {
		g.errs = append(g.errs, fmt.Errorf("node %q router is nil", from))
		return g
	}
	if len(targets) == 0 {
		g.errs = append(g.errs, fmt.Errorf("node %q router declares no targets", from))
		return g
	}
	declared := make(map[string]bool, len(targets))
	for _, target := range targets {
		declared[target] = true
	}
	g.routers[from] = router{fn: fn, targets: declared}
	return g
}

// SetEntryPoint designates the unique start node.
func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entry = name
	return g
}

// Compile validates the topology and freezes it for execution.
func (g *Graph) Compile() (*Compiled, error) {
	if len(g.errs) > 0 {
		return nil, g.errs[0]
	}
	if g.entry == "" {
		return nil, fmt.Errorf("entry point not set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("entry point %q is not a registered node", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("edge from unknown node %q", from)
		}
		if to != Terminal {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("edge %q -> %q references unknown node", from, to)
			}
		}
	}
	for from, r := range g.routers {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("router attached to unknown node %q", from)
		}
		for target := range r.targets {
			if target == Terminal {
				continue
			}
			if _, ok := g.nodes[target]; !ok {
				return nil, fmt.Errorf("router of %q declares unknown node %q", from, target)
			}
		}
	}
	// Every node needs a successor or an explicit terminal edge.
	for name := range g.nodes {
		if _, ok := g.edges[name]; ok {
			continue
		}
		if _, ok := g.routers[name]; ok {
			continue
		}
		return nil, fmt.Errorf("node %q has no successor and is not terminal", name)
	}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return &Compiled{graph: g}, nil
}

// checkAcyclic rejects routing cycles over the union of static edges and
// declared router targets; a correctly constructed graph always terminates.
func (g *Graph) checkAcyclic() error {
	successors := func(name string) []string {
		var out []string
		if to, ok := g.edges[name]; ok && to != Terminal {
			out = append(out, to)
		}
		if r, ok := g.routers[name]; ok {
			for target := range r.targets {
				if target != Terminal {
					out = append(out, target)
				}
			}
		}
		sort.Strings(out)
		return out
	}
	const (
		visiting = 1
		done     = 2
	)
	marks := map[string]int{}
	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case visiting:
			return fmt.Errorf("graph contains a cycle through %q", name)
		case done:
			return nil
		}
		marks[name] = visiting
		for _, next := range successors(name) {
			if err := visit(next); err != nil {
				return err
			}
		}
		marks[name] = done
		return nil
	}
	return visit(g.entry)
}

// Compiled is a validated, immutable topology ready for execution.
type Compiled struct {
	graph *Graph
}

// Entry returns the start node name.
func (c *Compiled) Entry() string {
	return c.graph.entry
}

// Node looks up a node implementation.
func (c *Compiled) Node(name string) (NodeFunc, bool) {
	fn, ok := c.graph.nodes[name]
	return fn, ok
}

// Next resolves the successor set for a node against the current state. A
// router returning a target outside its declared set is reported as an error
// rather than silently executed.
func (c *Compiled) Next(name string, s state.State) (Route, error) {
	if to, ok := c.graph.edges[name]; ok {
		if to == Terminal {
			return End(), nil
		}
		return RouteTo(to), nil
	}
	r, ok := c.graph.routers[name]
	if !ok {
		return End(), fmt.Errorf("node %q has no routing entry", name)
	}
	route := r.fn(s)
	for _, target := range route.Targets() {
		if !r.targets[target] {
			return End(), fmt.Errorf("router of %q returned undeclared node %q", name, target)
		}
	}
	return route, nil
}
