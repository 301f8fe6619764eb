package workflow

import (
	"fmt"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Graph is a directed per-turn workflow: named nodes whose transitions are
// decided at runtime by each node's return value.
type Graph struct {
	entry string
	nodes map[string]*Node
}

// NewGraph creates a graph that starts at the named entry node.
func NewGraph(entry string) *Graph {
	return &Graph{
		entry: entry,
		nodes: make(map[string]*Node),
	}
}

// AddNode registers a node. Registering the same name twice is a build
// error surfaced by Validate.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = &Node{Name: name, Run: fn}
	return g
}

// AddNodeWithRetry registers a node with a retry policy for transient
// failures.
func (g *Graph) AddNodeWithRetry(name string, fn NodeFunc, policy *RetryPolicy) *Graph {
	g.nodes[name] = &Node{Name: name, Run: fn, Retry: policy}
	return g
}

// Entry returns the entry node name.
func (g *Graph) Entry() string {
	return g.entry
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Validate checks that the entry node exists and every node is runnable.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return types.NewError(types.WORKFLOW_NO_SUCH_NODE, "graph has no entry node")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return types.NewError(types.WORKFLOW_NO_SUCH_NODE,
			fmt.Sprintf("entry node %q is not registered", g.entry))
	}
	for name, node := range g.nodes {
		if node.Run == nil {
			return types.NewError(types.WORKFLOW_NO_SUCH_NODE,
				fmt.Sprintf("node %q has no run function", name))
		}
	}
	return nil
}
