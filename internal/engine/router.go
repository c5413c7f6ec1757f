package engine

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/nicmue/payment-engine/internal/model"
)

// Router partitions the operation stream across shard channels so that every
// client maps to exactly one shard for the lifetime of the run.
type Router struct {
	shards []chan model.Operation
}

// NewRouter creates a router over the given shard delivery channels.
func NewRouter(shards []chan model.Operation) *Router {
	return &Router{shards: shards}
}

// Route forwards one operation to the channel of its client's shard. The
// send blocks while that channel is full; the resulting backpressure on the
// producer bounds memory when a shard falls behind.
func (r *Router) Route(op model.Operation) {
	r.shards[shardIndex(op.Client, len(r.shards))] <- op
}

// shardIndex maps a client id to a shard. FNV-1a over the big-endian
// encoding of the id is stable within a run and spreads the 16-bit id space
// well enough that parallelism tracks client diversity.
func shardIndex(client model.ClientID, n int) int {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(client))

	h := fnv.New32a()
	h.Write(buf[:])
	return int(h.Sum32() % uint32(n))
}
