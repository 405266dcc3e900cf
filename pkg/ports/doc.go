/*
Package ports defines the driven ports (interfaces) between the Harbor compiler and the
execution engine that runs compiled graphs.

The compiler only ever talks to these interfaces, so any engine that understands the
builder contract can be targeted without the compiler importing it.

# Key Interfaces

  - Engine: Creates a GraphBuilder for a given state schema descriptor.
  - GraphBuilder: Receives wrapped nodes and static edges, then compiles them.
  - Artifact: The compiled, invocable and streamable graph.
  - Checkpointer: Persists per-thread run state between supersteps.
  - DistributedLocker: Provides distributed locking for concurrent access to one thread.
*/
package ports
