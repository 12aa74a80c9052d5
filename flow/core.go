package flow

import "context"

// Node represents a processing unit in the workflow that can transform input to output.
// The generic parameters I and O define the input and output types for the node.
type Node[I any, O any] interface {
	// Run executes the node's processing logic with the provided context and input.
	// Returns the processed output and any error that occurred during processing.
	Run(ctx context.Context, input I) (O, error)
}

// Join combines multiple nodes into a single flow.
// The nodes are executed in sequence, with each node's output becoming the next node's input.
// Returns the combined flow or an error if no nodes are provided.
func Join(nodes ...Node[any, any]) (Node[any, any], error) {
	return NewFlow(nodes...)
}

// OfNode creates a new flow containing the specified node.
// It's a convenience function for creating a flow with a single existing node.
func OfNode(node Node[any, any]) *Flow {
	f, _ := NewFlow(node)
	return f
}

// OfProcessor creates a new flow containing the specified processor.
// It's a convenience function for creating a flow with a single processor function.
func OfProcessor(processor Processor[any, any]) *Flow {
	return OfNode(processor)
}
