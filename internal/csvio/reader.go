// Package csvio implements the record boundary of the payment engine: a
// reader turning the comma-separated input stream into operations, and a
// writer rendering account snapshots back to CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nicmue/payment-engine/internal/model"
)

// expected input column order: type, client, tx, amount.
var headerColumns = []string{"type", "client", "tx", "amount"}

// Reader iterates the input record stream, yielding one parsed operation
// per data row. Malformed rows surface as *model.RecordError and do not
// poison the iterator; the caller decides whether to skip or abort.
type Reader struct {
	cr     *csv.Reader
	line   int
	header bool
}

// NewReader wraps an input stream. The header row is validated on the
// first call to Next.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Conflict rows may omit the amount column entirely.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &Reader{cr: cr}
}

// Next returns the next operation, io.EOF at end of input, or an error.
func (r *Reader) Next() (model.Operation, error) {
	if !r.header {
		if err := r.readHeader(); err != nil {
			return model.Operation{}, err
		}
		r.header = true
	}

	for {
		fields, err := r.cr.Read()
		if err == io.EOF {
			return model.Operation{}, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return model.Operation{}, &model.RecordError{Line: parseErr.StartLine, Err: err}
		}
		if err != nil {
			return model.Operation{}, fmt.Errorf("read record: %w", err)
		}
		if isBlank(fields) {
			continue
		}
		// encoding/csv skips empty lines, so take the line from the reader
		// rather than counting records.
		r.line, _ = r.cr.FieldPos(0)

		op, err := r.parseRecord(fields)
		if err != nil {
			return model.Operation{}, &model.RecordError{Line: r.line, Err: err}
		}
		return op, nil
	}
}

func (r *Reader) readHeader() error {
	fields, err := r.cr.Read()
	r.line++
	if err == io.EOF {
		return fmt.Errorf("input is empty, expected header %q", strings.Join(headerColumns, ", "))
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(fields) != len(headerColumns) {
		return fmt.Errorf("invalid header: expected columns %v, got %v", headerColumns, fields)
	}
	for i, want := range headerColumns {
		if strings.TrimSpace(fields[i]) != want {
			return fmt.Errorf("invalid header column %d: expected %q, got %q", i+1, want, fields[i])
		}
	}
	return nil
}

func (r *Reader) parseRecord(fields []string) (model.Operation, error) {
	if len(fields) < 3 {
		return model.Operation{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	kind, err := model.ParseKind(strings.TrimSpace(fields[0]))
	if err != nil {
		return model.Operation{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return model.Operation{}, fmt.Errorf("invalid client id %q: %w", fields[1], err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return model.Operation{}, fmt.Errorf("invalid transaction id %q: %w", fields[2], err)
	}

	op := model.Operation{
		Kind:   kind,
		Client: model.ClientID(client),
		Tx:     model.TxID(tx),
	}

	if kind.HasAmount() {
		if len(fields) < 4 || strings.TrimSpace(fields[3]) == "" {
			return model.Operation{}, fmt.Errorf("%s requires an amount", kind)
		}
		amount, err := model.ParseAmount(strings.TrimSpace(fields[3]))
		if err != nil {
			return model.Operation{}, err
		}
		op.Amount = amount
	}
	// Conflict kinds ignore a present amount column.

	return op, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
