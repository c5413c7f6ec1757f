// Package engine implements the sharded dispatch pipeline of the payment
// engine.
//
// ARCHITECTURE:
//
// One producer goroutine (the Pipeline) reads parsed operations from a
// Source and hands them to the Router, which hashes the client id to one of
// N shard workers. Each shard owns a disjoint subset of clients and applies
// operations to their accounts strictly in arrival order.
//
// Ordering model:
//   - A single producer feeds the Router.
//   - Each shard has exactly one delivery channel with one consumer.
//   - The Router finishes the send for one operation before accepting the
//     next, so operations sharing a client reach their shard in source order.
//
// Shard channels are bounded; a full channel blocks the producer, which is
// the engine's backpressure mechanism. Channel close is the sole termination
// signal: on end of input every channel is closed, workers drain, and each
// reports a snapshot per owned account.
//
// No account state is ever shared between goroutines, so the hot path is
// lock-free. Given the same input and shard count, the resulting account
// map is deterministic; only the output row order is not.
package engine
