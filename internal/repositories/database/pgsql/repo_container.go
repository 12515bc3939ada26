package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sacco-suite/coop_core_app/internal/core/ports/repositories"
)

// NewRepositories wires every pgsql repository over one pool.
func NewRepositories(dbPool *pgxpool.Pool) portsrepo.Repositories {
	ledgerRepo := newPgxLedgerRepository(dbPool)

	return portsrepo.Repositories{
		Member:      newPgxMemberRepository(dbPool),
		Product:     newPgxProductRepository(dbPool),
		Savings:     newPgxSavingsRepository(dbPool),
		Loan:        newPgxLoanRepository(dbPool),
		Ledger:      ledgerRepo,
		Application: newPgxApplicationRepository(dbPool),
		Withdrawal:  newPgxWithdrawalRepository(dbPool, ledgerRepo),
	}
}
