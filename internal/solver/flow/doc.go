// Package flow implements a deterministic min-cost max-flow routine on a
// residual adjacency network. It is the assignment engine of the canonical
// block-heuristic solver.
//
//   - Method: successive shortest paths with Bellman-Ford label correction
//     on the residual graph (reverse arcs carry negative costs, so
//     Dijkstra without potentials is not applicable).
//   - Time:   O(F · V · E) worst case, where F is the total flow pushed.
//     Assignment networks here are bipartite with unit capacities, so F is
//     bounded by the block count of a single day.
//   - Memory: O(V + E) for the adjacency slices and the per-pass labels.
//
// Determinism: edges are relaxed strictly in insertion order and shortest
// paths prefer the earliest-inserted arc on ties, so identical construction
// order yields identical flows. Callers encode their tie-break order in the
// order they add edges.
package flow
