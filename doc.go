/*
Package harbor compiles plain Go functions into an executable state graph.

Nodes are declared on a graph in order. A node whose declared result type is a Route
(or the engine-native ports.Command) is Routed and picks its successor at runtime; any
other node is Sequential and is chained to the node declared after it. The compiler
synthesizes the entry edge, the sequential chain and the terminal edge, wraps every node
so its result is normalized into a route or a state delta, and assembles the result
against a ports.Engine.

# Usage

	g := harbor.Declare(harbor.Config{Name: "review", Start: "draft"})

	harbor.Node(g, draft)  // Sequential: returns harbor.Delta
	harbor.Node(g, review) // Routed: returns harbor.Route
	harbor.Node(g, publish)

	flow, err := g.Compile()
	if err != nil {
		log.Fatal(err)
	}
	final, err := flow.Invoke(ctx, harbor.State{"topic": "graphs"})

The default engine is the in-process superstep engine. Compile options such as
ports.WithCheckpointer and ports.WithHooks are passed through to it, and run options
such as ports.WithThread select a persisted thread.

# Errors

Configuration errors (duplicate or invalid names, a missing start node, an empty graph)
are returned by Compile and Plan. Result contract errors are returned by the engine
while running; every error matches domain.ErrConfiguration or domain.ErrInvocation.
*/
package harbor
