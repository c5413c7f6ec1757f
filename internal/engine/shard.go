package engine

import (
	"log/slog"

	"github.com/nicmue/payment-engine/internal/account"
	"github.com/nicmue/payment-engine/internal/model"
)

// shardEngine owns the accounts of the clients assigned to its index. It is
// the single consumer of its delivery channel; nothing else ever touches its
// account map.
type shardEngine struct {
	id       int
	in       chan model.Operation
	accounts map[model.ClientID]*account.Account
}

func newShardEngine(id, capacity int) *shardEngine {
	return &shardEngine{
		id:       id,
		in:       make(chan model.Operation, capacity),
		accounts: make(map[model.ClientID]*account.Account),
	}
}

// run receives operations until the channel closes, applying each to its
// client's account in arrival order. Accounts are created lazily on first
// reference.
func (s *shardEngine) run() error {
	for op := range s.in {
		acct, ok := s.accounts[op.Client]
		if !ok {
			acct = account.New(op.Client)
			s.accounts[op.Client] = acct
		}
		acct.Apply(op)
	}
	slog.Debug("shard drained", "shard", s.id, "accounts", len(s.accounts))
	return nil
}

// snapshots reports the final state of every owned account. Iteration order
// is unspecified; callers must not depend on it.
func (s *shardEngine) snapshots() []account.Snapshot {
	snaps := make([]account.Snapshot, 0, len(s.accounts))
	for _, acct := range s.accounts {
		snaps = append(snaps, acct.Snapshot())
	}
	return snaps
}
