package cli

import (
	"github.com/nicmue/payment-engine/internal/account"
	"github.com/nicmue/payment-engine/internal/engine"
)

// collectingSink tees snapshots into memory on their way to the real sink,
// so a finished run can be handed to the audit store without re-reading the
// engine's output.
type collectingSink struct {
	next  engine.Sink
	snaps []account.Snapshot
}

func (s *collectingSink) Write(snap account.Snapshot) error {
	s.snaps = append(s.snaps, snap)
	return s.next.Write(snap)
}

func (s *collectingSink) Flush() error {
	return s.next.Flush()
}
