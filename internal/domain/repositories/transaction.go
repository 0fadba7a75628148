package repositories

import "context"

// TxFn runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager wraps a unit of work in a database transaction. The
// revision lifecycle depends on it: a revision write and the document update
// it triggers must commit together or not at all.
type TransactionManager interface {
	// ExecTx executes fn within a transaction. If the context already
	// carries one, fn joins it instead of opening a nested transaction.
	ExecTx(ctx context.Context, fn TxFn) error
}
