package workflow

import (
	"context"
	"fmt"

	"github.com/ignite/freightdesk/internal/pkg/logger"
)

// End is the sentinel terminal target of the graph.
const End = "END"

// NodeFunc transforms the current state into a patch. Errors returned
// here are treated as uncaught failures and abort the turn; recoverable
// collaborator problems belong in result payloads instead.
type NodeFunc func(ctx context.Context, s *State) (Patch, error)

// RouteFunc is a pure decision over a read-only view of the state,
// returning the name of the next node.
type RouteFunc func(s *State) string

// Graph is a directed workflow with one entry point, static edges,
// conditional edges, and a single terminal sentinel.
type Graph struct {
	entry   string
	nodes   map[string]NodeFunc
	edges   map[string]string
	routers map[string]RouteFunc
	// declared router targets, for validation and reachability.
	routerTargets map[string][]string
}

// NewGraph creates an empty graph with the given entry node name.
func NewGraph(entry string) *Graph {
	return &Graph{
		entry:         entry,
		nodes:         map[string]NodeFunc{},
		edges:         map[string]string{},
		routers:       map[string]RouteFunc{},
		routerTargets: map[string][]string{},
	}
}

// AddNode registers a node under a unique name.
func (g *Graph) AddNode(name string, fn NodeFunc) {
	g.nodes[name] = fn
}

// AddEdge registers the static successor of a node.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddConditionalEdge registers a routing decision and its possible
// targets. Targets are declared so Validate can prove reachability.
func (g *Graph) AddConditionalEdge(from string, route RouteFunc, targets ...string) {
	g.routers[from] = route
	g.routerTargets[from] = targets
}

// Validate checks the graph is runnable: the entry exists, every node has
// exactly one successor mechanism, every target is defined (or End), and
// every node is reachable from the entry.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("entry node %q is not registered", g.entry)
	}
	for name := range g.nodes {
		_, hasEdge := g.edges[name]
		_, hasRouter := g.routers[name]
		if hasEdge && hasRouter {
			return fmt.Errorf("node %q has both a static and a conditional edge", name)
		}
		if !hasEdge && !hasRouter {
			return fmt.Errorf("node %q has no outgoing edge", name)
		}
	}
	check := func(from, to string) error {
		if to == End {
			return nil
		}
		if _, ok := g.nodes[to]; !ok {
			return fmt.Errorf("edge %s -> %s targets an unregistered node", from, to)
		}
		return nil
	}
	for from, to := range g.edges {
		if err := check(from, to); err != nil {
			return err
		}
	}
	for from, targets := range g.routerTargets {
		if len(targets) == 0 {
			return fmt.Errorf("conditional edge from %q declares no targets", from)
		}
		for _, to := range targets {
			if err := check(from, to); err != nil {
				return err
			}
		}
	}

	reachable := map[string]bool{}
	queue := []string{g.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == End || reachable[cur] {
			continue
		}
		reachable[cur] = true
		if to, ok := g.edges[cur]; ok {
			queue = append(queue, to)
		}
		queue = append(queue, g.routerTargets[cur]...)
	}
	for name := range g.nodes {
		if !reachable[name] {
			return fmt.Errorf("node %q is unreachable from entry", name)
		}
	}
	return nil
}

// RunStatus is the terminal disposition of one turn.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run advances the state through the graph until the terminal sentinel.
// One node runs at a time; a panic or returned error in a node ends the
// turn with StatusFailed and the slots filled so far remain on the state.
func (g *Graph) Run(ctx context.Context, s *State) (RunStatus, error) {
	// A DAG never revisits a node; the step bound turns a wiring bug
	// into an error instead of a spin.
	maxSteps := len(g.nodes) + 1
	current := g.entry

	for steps := 0; steps < maxSteps; steps++ {
		fn, ok := g.nodes[current]
		if !ok {
			return StatusFailed, fmt.Errorf("node %q is not registered", current)
		}

		patch, err := runNode(ctx, fn, s)
		if err != nil {
			logger.Error("workflow node failed",
				"workflow_id", s.WorkflowID, "node", current, "error", err.Error())
			return StatusFailed, fmt.Errorf("node %s: %w", current, err)
		}
		s.apply(patch)

		next := g.edges[current]
		if route, ok := g.routers[current]; ok {
			next = route(s)
			logger.Debug("workflow route decided",
				"workflow_id", s.WorkflowID, "from", current, "to", next)
		}
		if next == End {
			return StatusCompleted, nil
		}
		current = next
	}
	return StatusFailed, fmt.Errorf("graph did not terminate after %d steps", maxSteps)
}

// runNode isolates panics so an adapter blow-up yields a partial-result
// turn rather than a crashed process.
func runNode(ctx context.Context, fn NodeFunc, s *State) (patch Patch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, s)
}
