// Package lattice is the composition root of the Lattice graph store.
//
// Lattice keeps a graph of entities and interned string values in memory and
// serves it over TCP with a compact length-prefixed binary protocol. Every
// mutation is appended to a write-ahead log before it is acknowledged, and
// the log is replayed on startup to rebuild the graph.
//
// Features:
//
//   - **Dot paths**: reads and writes address nested entities with keys like "user.address.city".
//   - **Interning**: equal strings share one value node.
//   - **Interchangeable logs**: binary, CSV text or BadgerDB, selected by configuration.
//   - **Bounded concurrency**: a fixed worker pool, shared reads, exclusive writes.
//
// Usage:
//
//	cfg, err := lattice.LoadConfig("lattice.yaml")
//	inst, err := lattice.Open(ctx, cfg, lattice.WithLogger(logger))
//	defer inst.Close()
//	err = inst.Server.ListenAndServe(ctx, cfg.Addr())
//
// Clients talk to a running server with Dial:
//
//	c, err := lattice.Dial(ctx, "localhost:4000")
//	id, err := c.Create(ctx)
//	_, err = c.Set(ctx, id, "name", "amit")
package lattice
