package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nicmue/payment-engine/internal/account"
	"github.com/nicmue/payment-engine/internal/model"
)

var outputColumns = []string{"client", "available", "held", "total", "locked"}

// Writer renders account snapshots as the output report: a header row and
// one row per account, amounts in minimal representation. Row order follows
// the caller.
type Writer struct {
	cw     *csv.Writer
	header bool
}

// NewWriter wraps an output stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// Write appends one account row, emitting the header first if needed.
func (w *Writer) Write(snap account.Snapshot) error {
	if !w.header {
		if err := w.cw.Write(outputColumns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.header = true
	}

	record := []string{
		strconv.FormatUint(uint64(snap.Client), 10),
		model.FormatAmount(snap.Available),
		model.FormatAmount(snap.Held),
		model.FormatAmount(snap.Total),
		strconv.FormatBool(snap.Locked),
	}
	if err := w.cw.Write(record); err != nil {
		return fmt.Errorf("write account %d: %w", snap.Client, err)
	}
	return nil
}

// Flush writes the header even when no account was touched, then flushes
// the underlying buffer.
func (w *Writer) Flush() error {
	if !w.header {
		if err := w.cw.Write(outputColumns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.header = true
	}
	w.cw.Flush()
	return w.cw.Error()
}
