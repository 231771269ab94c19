package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quipufin/cajachica_backend/internal/apperrors"
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	portsrepo "github.com/quipufin/cajachica_backend/internal/core/ports/repositories"
	"github.com/quipufin/cajachica_backend/internal/models"
	"github.com/quipufin/cajachica_backend/internal/utils/mapping"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction, line
// item and withholding reads.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	transaction_id, box_id, transaction_date, document_type, document_number,
	supplier_name, total, is_justification, parent_transaction_id,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.BoxID,
		&m.TransactionDate,
		&m.DocumentType,
		&m.DocumentNumber,
		&m.SupplierName,
		&m.Total,
		&m.IsJustification,
		&m.ParentTransactionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindTransactionByID retrieves one transaction with its line items and
// withholding, if any.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}

	txn := mapping.ToDomainTransaction(*m)
	if err := r.attachLineItems(ctx, map[string]*domain.Transaction{txn.TransactionID: &txn}); err != nil {
		return nil, err
	}
	if err := r.attachWithholdings(ctx, map[string]*domain.Transaction{txn.TransactionID: &txn}); err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindTransactionsByBoxID retrieves every transaction of a box with line items
// and withholdings attached, oldest first. Totals are always computed from this
// full set, so no filtering happens here.
func (r *PgxTransactionRepository) FindTransactionsByBoxID(ctx context.Context, boxID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE box_id = $1 ORDER BY transaction_date ASC, created_at ASC;`
	rows, err := r.Pool.Query(ctx, query, boxID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for box "+boxID, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row for box "+boxID, scanErr)
		}
		txns = append(txns, mapping.ToDomainTransaction(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows for box "+boxID, err)
	}
	if len(txns) == 0 {
		return []domain.Transaction{}, nil
	}

	byID := make(map[string]*domain.Transaction, len(txns))
	for i := range txns {
		byID[txns[i].TransactionID] = &txns[i]
	}
	if err := r.attachLineItems(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.attachWithholdings(ctx, byID); err != nil {
		return nil, err
	}
	return txns, nil
}

// attachLineItems loads line items for the given transactions in one query.
func (r *PgxTransactionRepository) attachLineItems(ctx context.Context, byID map[string]*domain.Transaction) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	query := `
		SELECT line_item_id, transaction_id, name, amount, tax_applicable, tax_amount
		FROM line_items
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, line_item_id;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query line items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.LineItem
		if err := rows.Scan(&m.LineItemID, &m.TransactionID, &m.Name, &m.Amount, &m.TaxApplicable, &m.TaxAmount); err != nil {
			return apperrors.NewAppError(500, "failed to scan line item row", err)
		}
		if txn, ok := byID[m.TransactionID]; ok {
			txn.LineItems = append(txn.LineItems, mapping.ToDomainLineItem(m))
		}
	}
	return rows.Err()
}

// attachWithholdings loads withholding headers and their items for the given
// transactions in two queries.
func (r *PgxTransactionRepository) attachWithholdings(ctx context.Context, byID map[string]*domain.Transaction) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	headerQuery := `
		SELECT withholding_id, transaction_id, withholding_date, withholding_number,
		       total_source, total_vat, total_withheld, collected,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM withholdings
		WHERE transaction_id = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, headerQuery, ids)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query withholdings", err)
	}
	defer rows.Close()

	byWithholdingID := make(map[string]*domain.Withholding)
	for rows.Next() {
		var m models.Withholding
		if err := rows.Scan(
			&m.WithholdingID,
			&m.TransactionID,
			&m.Date,
			&m.Number,
			&m.TotalSource,
			&m.TotalVAT,
			&m.TotalWithheld,
			&m.Collected,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return apperrors.NewAppError(500, "failed to scan withholding row", err)
		}
		w := mapping.ToDomainWithholding(m)
		if txn, ok := byID[w.TransactionID]; ok {
			txn.Withholding = &w
			byWithholdingID[w.WithholdingID] = txn.Withholding
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating withholding rows", err)
	}
	if len(byWithholdingID) == 0 {
		return nil
	}

	withholdingIDs := make([]string, 0, len(byWithholdingID))
	for id := range byWithholdingID {
		withholdingIDs = append(withholdingIDs, id)
	}
	itemQuery := `
		SELECT withholding_item_id, withholding_id, line_item_id, item_type,
		       source_pct, vat_pct, source_amount, vat_amount
		FROM withholding_items
		WHERE withholding_id = ANY($1)
		ORDER BY withholding_id, withholding_item_id;
	`
	itemRows, err := r.Pool.Query(ctx, itemQuery, withholdingIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query withholding items", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var m models.WithholdingItem
		if err := itemRows.Scan(
			&m.WithholdingItemID,
			&m.WithholdingID,
			&m.LineItemID,
			&m.Type,
			&m.SourcePct,
			&m.VATPct,
			&m.SourceAmount,
			&m.VATAmount,
		); err != nil {
			return apperrors.NewAppError(500, "failed to scan withholding item row", err)
		}
		if w, ok := byWithholdingID[m.WithholdingID]; ok {
			w.Items = append(w.Items, mapping.ToDomainWithholdingItem(m))
		}
	}
	return itemRows.Err()
}

const insertTransactionQuery = `
	INSERT INTO transactions (
		transaction_id, box_id, transaction_date, document_type, document_number,
		supplier_name, total, is_justification, parent_transaction_id,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

const insertLineItemQuery = `
	INSERT INTO line_items (line_item_id, transaction_id, name, amount, tax_applicable, tax_amount)
	VALUES ($1, $2, $3, $4, $5, $6);
`

func queueTransactionInsert(batch *pgx.Batch, txn domain.Transaction) {
	m := mapping.ToModelTransaction(txn)
	batch.Queue(insertTransactionQuery,
		m.TransactionID,
		m.BoxID,
		m.TransactionDate,
		m.DocumentType,
		m.DocumentNumber,
		m.SupplierName,
		m.Total,
		m.IsJustification,
		m.ParentTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	for _, item := range txn.LineItems {
		mi := mapping.ToModelLineItem(item)
		batch.Queue(insertLineItemQuery,
			mi.LineItemID,
			mi.TransactionID,
			mi.Name,
			mi.Amount,
			mi.TaxApplicable,
			mi.TaxAmount,
		)
	}
}

// SaveTransaction inserts a transaction and its line items in one DB
// transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	queueTransactionInsert(batch, txn)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// UpdateTransaction updates the transaction row and replaces its full line item
// set in one DB transaction.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET transaction_date = $2,
		    document_type = $3,
		    document_number = $4,
		    supplier_name = $5,
		    total = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE transaction_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.TransactionDate,
		m.DocumentType,
		m.DocumentNumber,
		m.SupplierName,
		m.Total,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE transaction_id = $1;`, m.TransactionID); err != nil {
		return apperrors.NewAppError(500, "failed to delete line items of transaction "+m.TransactionID, err)
	}

	batch := &pgx.Batch{}
	for _, item := range txn.LineItems {
		mi := mapping.ToModelLineItem(item)
		batch.Queue(insertLineItemQuery,
			mi.LineItemID,
			mi.TransactionID,
			mi.Name,
			mi.Amount,
			mi.TaxApplicable,
			mi.TaxAmount,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert line items of transaction "+m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// DeleteTransaction removes a transaction and its line items.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE transaction_id = $1;`, transactionID); err != nil {
		return apperrors.NewAppError(500, "failed to delete line items of transaction "+transactionID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// ApplyLegalization inserts the justifying invoice with its copied line items,
// re-parents the children, and appends the audit entry, all in one DB
// transaction. Children that meanwhile gained a parent make the whole apply
// fail, which keeps the one-level hierarchy intact under concurrency.
func (r *PgxTransactionRepository) ApplyLegalization(ctx context.Context, plan domain.LegalizationPlan, audit domain.AuditEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	queueTransactionInsert(batch, plan.Justification)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert justification "+plan.Justification.TransactionID, err)
	}

	reparentQuery := `
		UPDATE transactions
		SET parent_transaction_id = $1,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE transaction_id = ANY($4)
		  AND box_id = $5
		  AND parent_transaction_id IS NULL;
	`
	tag, err := tx.Exec(ctx, reparentQuery,
		plan.Justification.TransactionID,
		plan.Justification.LastUpdatedAt,
		plan.Justification.LastUpdatedBy,
		plan.ChildTransactionIDs,
		plan.BoxID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to re-parent legalized transactions", err)
	}
	if tag.RowsAffected() != int64(len(plan.ChildTransactionIDs)) {
		return fmt.Errorf("%w: %d of %d selected transactions were re-parented; another legalization won",
			apperrors.ErrConsistency, tag.RowsAffected(), len(plan.ChildTransactionIDs))
	}

	if err := insertAuditEntryTx(ctx, tx, audit); err != nil {
		return apperrors.NewAppError(500, "failed to insert legalization audit", err)
	}

	return r.Commit(ctx, tx)
}
