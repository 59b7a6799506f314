// Package pipeline runs interview steps as a small directed graph over a
// shared State.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fadilmartias/interview-coach/internal/logger"
	"go.uber.org/zap"
)

// End is the terminal pseudo-node.
const End = "__end__"

const defaultMaxSteps = 16

var (
	ErrFieldAlreadyWritten = errors.New("field already written")
	ErrUndeclaredWrite     = errors.New("node changed a field it does not own")
	ErrMaxSteps            = errors.New("graph exceeded max steps")
)

// NodeFunc receives a copy of the state and returns the updated copy.
// Node failures belong in the result envelopes; a returned error aborts the run.
type NodeFunc func(ctx context.Context, state State) (State, error)

type Node struct {
	Name   string
	Writes []Field
	Run    NodeFunc
}

// Router picks the next node from the state after a conditional node.
type Router func(state State) string

type Builder struct {
	name     string
	entry    string
	order    []string
	nodes    map[string]Node
	edges    map[string]string
	routers  map[string]Router
	terminal Stage
	errs     []error
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:     name,
		nodes:    make(map[string]Node),
		edges:    make(map[string]string),
		routers:  make(map[string]Router),
		terminal: StageCompleted,
	}
}

// AddNode registers a node. The first node added is the entry point.
func (b *Builder) AddNode(node Node) *Builder {
	switch {
	case node.Name == "" || node.Name == End:
		b.errs = append(b.errs, fmt.Errorf("invalid node name %q", node.Name))
	case node.Run == nil:
		b.errs = append(b.errs, fmt.Errorf("node %s has no run func", node.Name))
	case len(node.Writes) == 0:
		b.errs = append(b.errs, fmt.Errorf("node %s declares no output field", node.Name))
	}
	if _, dup := b.nodes[node.Name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate node %s", node.Name))
	}
	if b.entry == "" {
		b.entry = node.Name
	}
	b.order = append(b.order, node.Name)
	b.nodes[node.Name] = node
	return b
}

func (b *Builder) AddEdge(from, to string) *Builder {
	if _, ok := b.edges[from]; ok {
		b.errs = append(b.errs, fmt.Errorf("node %s already has an edge", from))
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdge routes from a node by inspecting the state it produced.
// The router may return any registered node or End.
func (b *Builder) AddConditionalEdge(from string, router Router) *Builder {
	if _, ok := b.routers[from]; ok {
		b.errs = append(b.errs, fmt.Errorf("node %s already has a conditional edge", from))
	}
	b.routers[from] = router
	return b
}

// Terminal sets the stage the state is left in when End is reached.
func (b *Builder) Terminal(stage Stage) *Builder {
	b.terminal = stage
	return b
}

func (b *Builder) Compile(log *zap.Logger) (*Graph, error) {
	errs := slices.Clone(b.errs)
	if b.entry == "" {
		errs = append(errs, fmt.Errorf("graph %s has no nodes", b.name))
	}
	for _, name := range b.order {
		_, hasEdge := b.edges[name]
		_, hasRouter := b.routers[name]
		if hasEdge && hasRouter {
			errs = append(errs, fmt.Errorf("node %s has both an edge and a conditional edge", name))
		}
		if !hasEdge && !hasRouter {
			errs = append(errs, fmt.Errorf("node %s has no outgoing edge", name))
		}
	}
	for from, to := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("edge from unknown node %s", from))
		}
		if _, ok := b.nodes[to]; !ok && to != End {
			errs = append(errs, fmt.Errorf("edge to unknown node %s", to))
		}
	}
	for from := range b.routers {
		if _, ok := b.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("conditional edge from unknown node %s", from))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("compile graph %s: %w", b.name, err)
	}

	return &Graph{
		name:     b.name,
		entry:    b.entry,
		nodes:    b.nodes,
		edges:    b.edges,
		routers:  b.routers,
		terminal: b.terminal,
		MaxSteps: defaultMaxSteps,
		logger:   logger.OrNop(log).With(zap.String("graph", b.name)),
	}, nil
}

// Graph is a compiled, immutable pipeline. It is safe for concurrent runs.
type Graph struct {
	name     string
	entry    string
	nodes    map[string]Node
	edges    map[string]string
	routers  map[string]Router
	terminal Stage
	MaxSteps int
	logger   *zap.Logger
}

func (g *Graph) Name() string {
	return g.name
}

// Run executes nodes strictly one after another starting at the entry node.
func (g *Graph) Run(ctx context.Context, state State) (State, error) {
	current := g.entry
	start := time.Now()

	for step := 0; current != End; step++ {
		if step >= g.MaxSteps {
			return state, fmt.Errorf("%w (%d) in graph %s", ErrMaxSteps, g.MaxSteps, g.name)
		}
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("graph %s cancelled before %s: %w", g.name, current, err)
		}

		node := g.nodes[current]
		written := state.written()
		for _, field := range node.Writes {
			if written[field] {
				return state, fmt.Errorf("node %s: %w: %s", node.Name, ErrFieldAlreadyWritten, field)
			}
		}

		// nodes share the answers backing array, so compare against a copy
		before := state
		before.Answers = slices.Clone(state.Answers)

		nodeStart := time.Now()
		next, err := node.Run(ctx, state)
		if err != nil {
			return before, fmt.Errorf("node %s: %w", node.Name, err)
		}
		for _, field := range before.changedFields(next) {
			if !slices.Contains(node.Writes, field) {
				return before, fmt.Errorf("node %s: %w: %s", node.Name, ErrUndeclaredWrite, field)
			}
		}
		state = next

		g.logger.Debug("node finished",
			zap.String("node", node.Name),
			zap.Int("step", step),
			zap.Duration("duration", time.Since(nodeStart)),
		)

		current = g.next(current, state)
	}

	state.Stage = g.terminal
	g.logger.Debug("graph finished", zap.Stringer("stage", state.Stage), zap.Duration("duration", time.Since(start)))
	return state, nil
}

func (g *Graph) next(from string, state State) string {
	if router, ok := g.routers[from]; ok {
		to := router(state)
		if _, known := g.nodes[to]; !known && to != End {
			g.logger.Warn("router returned unknown node, ending", zap.String("from", from), zap.String("to", to))
			return End
		}
		return to
	}
	return g.edges[from]
}
