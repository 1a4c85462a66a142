// Package server is the request executor of a lattice store.
//
// A Server owns one graph.Store and one core.Log. On startup Recover
// replays the log into the store. Serve then accepts TCP connections and
// hands each one to a fixed pool of workers; a worker owns its connection
// until the peer closes it or an error occurs.
//
// Reads run under a shared lock. Writes take the exclusive lock, mutate the
// store and append to the log before the lock is released, so the log
// order is the apply order and no reader sees an unlogged write. A failed
// append is fatal: the server stops accepting and refuses further transactions.
package server
