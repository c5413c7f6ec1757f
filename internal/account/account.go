// Package account implements the per-client balance and dispute state machine.
//
// Every operation on an Account is infallible: anomalous input (duplicate
// transaction ids, references to unknown transactions, withdrawals beyond the
// available balance, dispute-lifecycle violations) is silently ignored and the
// account is left unchanged. The engine is meant to be robust against
// adversarial or disordered partner input, so "ignore and continue" is the
// contract, not an error path.
//
// An Account is owned by exactly one shard worker and is never shared across
// goroutines, so no locking happens here.
package account

import (
	"github.com/shopspring/decimal"

	"github.com/nicmue/payment-engine/internal/model"
)

// DisputeState tracks where a recorded deposit is in its dispute lifecycle.
type DisputeState int

const (
	// Undisputed is the initial state; resolve returns a deposit here.
	Undisputed DisputeState = iota
	// Disputed means the deposit's funds are held pending resolution.
	Disputed
	// ChargedBack is terminal; the held funds were consumed and the
	// account locked.
	ChargedBack
)

// DepositRecord is the ledger entry for one deposit. Only deposits are
// recorded; withdrawals leave no trace beyond their balance effect because
// they cannot be disputed.
type DepositRecord struct {
	Amount decimal.Decimal
	State  DisputeState
}

// Account is the state of a single client: balances, lock flag, and the
// ledger of disputable deposits.
type Account struct {
	client    model.ClientID
	available decimal.Decimal
	held      decimal.Decimal
	locked    bool
	deposits  map[model.TxID]*DepositRecord
}

// New returns a zeroed account for the given client.
func New(client model.ClientID) *Account {
	return &Account{
		client:   client,
		deposits: make(map[model.TxID]*DepositRecord),
	}
}

// Apply dispatches one operation to the matching state transition.
func (a *Account) Apply(op model.Operation) {
	switch op.Kind {
	case model.KindDeposit:
		a.Deposit(op.Tx, op.Amount)
	case model.KindWithdrawal:
		a.Withdraw(op.Tx, op.Amount)
	case model.KindDispute:
		a.Dispute(op.Tx)
	case model.KindResolve:
		a.Resolve(op.Tx)
	case model.KindChargeback:
		a.Chargeback(op.Tx)
	}
}

// Deposit credits available and records the transaction as disputable.
// A transaction id already present in the ledger is ignored. Deposits are
// permitted on locked accounts.
func (a *Account) Deposit(tx model.TxID, amount decimal.Decimal) {
	if _, ok := a.deposits[tx]; ok {
		return
	}
	a.deposits[tx] = &DepositRecord{Amount: amount, State: Undisputed}
	a.available = a.available.Add(amount)
}

// Withdraw debits available. Ignored when the account is locked or the
// available balance does not cover the amount. Withdrawal transaction ids
// are not tracked.
func (a *Account) Withdraw(_ model.TxID, amount decimal.Decimal) {
	if a.locked {
		return
	}
	if a.available.LessThan(amount) {
		return
	}
	a.available = a.available.Sub(amount)
}

// Dispute moves an undisputed deposit's funds from available to held.
// Unknown transactions and deposits not currently Undisputed are ignored.
// Available may go negative here: the deposited funds can already have been
// withdrawn. Permitted on locked accounts.
func (a *Account) Dispute(tx model.TxID) {
	rec, ok := a.deposits[tx]
	if !ok || rec.State != Undisputed {
		return
	}
	rec.State = Disputed
	a.available = a.available.Sub(rec.Amount)
	a.held = a.held.Add(rec.Amount)
}

// Resolve returns a disputed deposit's funds from held to available.
// Unknown transactions, deposits not currently Disputed, and amounts
// exceeding the held balance are ignored. The held guard cannot trigger
// under the account invariants but is a hard check. Permitted on locked
// accounts.
func (a *Account) Resolve(tx model.TxID) {
	rec, ok := a.deposits[tx]
	if !ok || rec.State != Disputed {
		return
	}
	if a.held.LessThan(rec.Amount) {
		return
	}
	rec.State = Undisputed
	a.held = a.held.Sub(rec.Amount)
	a.available = a.available.Add(rec.Amount)
}

// Chargeback consumes a disputed deposit's held funds and locks the account.
// Unknown transactions, deposits not currently Disputed, and amounts
// exceeding the held balance are ignored. Available is not restored: the
// held funds are gone for good, and the deposit can never be disputed again.
// Permitted on locked accounts.
func (a *Account) Chargeback(tx model.TxID) {
	rec, ok := a.deposits[tx]
	if !ok || rec.State != Disputed {
		return
	}
	if a.held.LessThan(rec.Amount) {
		return
	}
	rec.State = ChargedBack
	a.held = a.held.Sub(rec.Amount)
	a.locked = true
}

// Client returns the owning client id.
func (a *Account) Client() model.ClientID { return a.client }

// Available returns the freely withdrawable balance.
func (a *Account) Available() decimal.Decimal { return a.available }

// Held returns the balance frozen pending dispute resolution.
func (a *Account) Held() decimal.Decimal { return a.held }

// Locked reports whether a chargeback has locked the account.
func (a *Account) Locked() bool { return a.locked }

// Snapshot captures the reportable state of an account at end of run.
// Total is computed once, at snapshot time.
type Snapshot struct {
	Client    model.ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Snapshot returns the account's final reportable state.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Client:    a.client,
		Available: a.available,
		Held:      a.held,
		Total:     a.available.Add(a.held),
		Locked:    a.locked,
	}
}
