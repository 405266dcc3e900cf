/*
Package domain contains the core vocabulary shared by the Harbor compiler and the
execution engines it targets.

It defines what a graph is made of before any engine is involved: node definitions,
the graph configuration, routing directives, state deltas and the synthesized edges.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - NodeDefinition: A registered step procedure with its name and declaration index.
  - GraphConfig: The schema descriptor, start node, terminal sentinel and graph name.
  - Route: A routing directive naming the next node(s) plus an optional state update.
  - Delta: A state update with no routing implication.
  - Topology: The classified node list and the static edges synthesized from it.
*/
package domain
