package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account. The id space is 16-bit by contract
// with upstream record producers.
type ClientID uint16

// TxID identifies a transaction within a client's ledger. TxIDs are only
// unique per client; the engine never performs a global TxID lookup.
type TxID uint32

// OpKind distinguishes the five operation types of the input stream.
type OpKind int

const (
	// KindDeposit credits an account and creates a disputable ledger entry.
	KindDeposit OpKind = iota + 1
	// KindWithdrawal debits an account. Withdrawals are not disputable.
	KindWithdrawal
	// KindDispute moves a deposit's funds from available to held.
	KindDispute
	// KindResolve returns a disputed deposit's funds to available.
	KindResolve
	// KindChargeback consumes a disputed deposit's held funds and locks the account.
	KindChargeback
)

// String returns the wire name of the kind, matching the input CSV vocabulary.
func (k OpKind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// ParseKind maps a wire name to its OpKind. Names are case-sensitive
// lowercase per the input contract.
func ParseKind(s string) (OpKind, error) {
	switch s {
	case "deposit":
		return KindDeposit, nil
	case "withdrawal":
		return KindWithdrawal, nil
	case "dispute":
		return KindDispute, nil
	case "resolve":
		return KindResolve, nil
	case "chargeback":
		return KindChargeback, nil
	default:
		return 0, fmt.Errorf("unknown operation type %q", s)
	}
}

// HasAmount reports whether records of this kind must carry an amount.
// Conflict kinds (dispute/resolve/chargeback) reference a prior transaction
// and carry none.
func (k OpKind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Operation is one parsed input record. Amount is only meaningful when
// Kind.HasAmount() is true; it is the zero decimal otherwise.
//
// Operations are ephemeral: produced once by the reader, consumed once by
// the shard that owns the client.
type Operation struct {
	Kind   OpKind
	Client ClientID
	Tx     TxID
	Amount decimal.Decimal
}

// Deposit builds a deposit operation.
func Deposit(client ClientID, tx TxID, amount decimal.Decimal) Operation {
	return Operation{Kind: KindDeposit, Client: client, Tx: tx, Amount: amount}
}

// Withdrawal builds a withdrawal operation.
func Withdrawal(client ClientID, tx TxID, amount decimal.Decimal) Operation {
	return Operation{Kind: KindWithdrawal, Client: client, Tx: tx, Amount: amount}
}

// Dispute builds a dispute operation.
func Dispute(client ClientID, tx TxID) Operation {
	return Operation{Kind: KindDispute, Client: client, Tx: tx}
}

// Resolve builds a resolve operation.
func Resolve(client ClientID, tx TxID) Operation {
	return Operation{Kind: KindResolve, Client: client, Tx: tx}
}

// Chargeback builds a chargeback operation.
func Chargeback(client ClientID, tx TxID) Operation {
	return Operation{Kind: KindChargeback, Client: client, Tx: tx}
}
