package services

import (
	"context"
	"fmt"

	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	portssvc "github.com/quipufin/cajachica_backend/internal/core/ports/services"
	"github.com/quipufin/cajachica_backend/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

// ledgerService projects a box's transaction set into aggregate totals. The
// projection is a pure function of its inputs; GetBoxTotals re-reads the store
// on every call so there is no cached figure to drift.
type ledgerService struct {
	boxRepo portsrepo.CashBoxReader
	txnRepo portsrepo.TransactionReader
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(boxRepo portsrepo.CashBoxReader, txnRepo portsrepo.TransactionReader) portssvc.LedgerSvcFacade {
	return &ledgerService{boxRepo: boxRepo, txnRepo: txnRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ComputeTotals aggregates the transaction set of a box.
//
// Only top-level transactions contribute: a transaction folded into a
// legalization (non-nil parent) is represented by its justifying parent and
// skipped here, which is what keeps totals invariant across a legalization.
// Deposits are summed apart from expenses because they leave the drawer
// without being expenses: Cash = InitialAmount − Deposits − Net.
func (s *ledgerService) ComputeTotals(transactions []domain.Transaction, box domain.CashBox) domain.Totals {
	if len(transactions) == 0 {
		return domain.ZeroTotals(box.InitialAmount)
	}

	invoiced := decimal.Zero
	deposits := decimal.Zero
	sourceWithheld := decimal.Zero
	vatWithheld := decimal.Zero

	for i := range transactions {
		txn := &transactions[i]
		if txn.IsChild() {
			continue
		}
		if txn.IsDeposit() {
			deposits = deposits.Add(txn.Total)
			continue
		}
		invoiced = invoiced.Add(txn.Total)
		if txn.Withholding != nil {
			sourceWithheld = sourceWithheld.Add(txn.Withholding.TotalSource)
			vatWithheld = vatWithheld.Add(txn.Withholding.TotalVAT)
		}
	}

	invoiced = moneymath.RoundCents(invoiced)
	deposits = moneymath.RoundCents(deposits)
	sourceWithheld = moneymath.RoundCents(sourceWithheld)
	vatWithheld = moneymath.RoundCents(vatWithheld)
	totalWithheld := moneymath.RoundCents(sourceWithheld.Add(vatWithheld))
	net := moneymath.RoundCents(invoiced.Sub(totalWithheld))
	cash := moneymath.RoundCents(box.InitialAmount.Sub(deposits).Sub(net))

	return domain.Totals{
		Invoiced:       invoiced,
		Deposits:       deposits,
		SourceWithheld: sourceWithheld,
		VATWithheld:    vatWithheld,
		TotalWithheld:  totalWithheld,
		Net:            net,
		Cash:           cash,
	}
}

// GetBoxTotals reads the box and its full transaction set from the store and
// projects the totals.
func (s *ledgerService) GetBoxTotals(ctx context.Context, boxID string) (*domain.Totals, error) {
	box, err := s.boxRepo.FindCashBoxByID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cash box %s: %w", boxID, err)
	}

	transactions, err := s.txnRepo.FindTransactionsByBoxID(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for box %s: %w", boxID, err)
	}

	totals := s.ComputeTotals(transactions, *box)
	return &totals, nil
}
