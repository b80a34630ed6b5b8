package sync

import "context"

// TxManager delimits one atomic unit of mapping-store work. The orchestrator
// opens one transaction per template: the remote push outcome and its mapping
// writes commit together, or the template's work is rolled back as a whole.
type TxManager interface {
	// Do runs fn inside a transaction. The context passed to fn carries the
	// transactional scope; repositories called with it join the transaction.
	// Do commits when fn returns nil and rolls back otherwise.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
