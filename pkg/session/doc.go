/*
Package session serializes access to graph threads.

A thread is the unit of persistence of a compiled graph: every run started with
ports.WithThread(id) reads and writes the same checkpoint. The Manager guarantees that
only one run advances a thread at a time, locally with a ref-counted mutex per thread and,
when a ports.DistributedLocker is configured, across replicas as well.
*/
package session
