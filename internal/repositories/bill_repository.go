package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
)

type billTable struct {
	header string
	items  string
}

// table names are fixed here and never taken from input
var billTables = map[models.BillKind]billTable{
	models.BillKindCustomer: {header: "customer_bills", items: "customer_bill_items"},
	models.BillKindFarmer:   {header: "farmer_bills", items: "farmer_bill_items"},
}

func tableFor(kind models.BillKind) (billTable, error) {
	t, ok := billTables[kind]
	if !ok {
		return billTable{}, apperr.Validation("kind", "unknown bill kind %q", kind)
	}
	return t, nil
}

// BillRepository stores customer and farmer bills. Both books share one
// layout and differ only in table names.
type BillRepository struct {
	DB *pgxpool.Pool
}

func NewBillRepository(db *pgxpool.Pool) *BillRepository {
	return &BillRepository{DB: db}
}

const billColumns = `id, company_id, year_id, bill_no, bill_date, party_no, total_amount,
	charges, final_amount, previous_balance, remarks, created_by, created_at, updated_at`

// ExistsForPartyDateTx reports whether another bill is filed for partyNo on date.
// excludeID skips the bill being updated; pass 0 on create.
func (r *BillRepository) ExistsForPartyDateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, partyNo string, date models.Date, excludeID int) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM `+t.header+`
			WHERE company_id = @company_id AND year_id = @year_id
			  AND party_no = @party_no AND bill_date = @bill_date AND id <> @exclude_id
		)`,
		scoped(scope, pgx.NamedArgs{
			"party_no":   partyNo,
			"bill_date":  dateArg(date),
			"exclude_id": excludeID,
		}),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing %s bill: %w", kind, err)
	}
	return exists, nil
}

// CreateTx inserts the header and its items
func (r *BillRepository) CreateTx(ctx context.Context, tx pgx.Tx, bill *models.Bill) error {
	t, err := tableFor(bill.Kind)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO `+t.header+` (company_id, year_id, bill_no, bill_date, party_no, total_amount,
			charges, final_amount, previous_balance, remarks, created_by)
		 VALUES (@company_id, @year_id, @bill_no, @bill_date, @party_no, @total_amount,
			@charges, @final_amount, @previous_balance, @remarks, @created_by)
		 RETURNING id, created_at, updated_at`,
		billArgs(bill),
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return billWriteError(bill, err)
	}

	return r.insertItemsTx(ctx, tx, t, bill)
}

// UpdateTx rewrites the header and replaces every item. The caller owns tx,
// so a failure never leaves a header without items.
func (r *BillRepository) UpdateTx(ctx context.Context, tx pgx.Tx, bill *models.Bill) error {
	t, err := tableFor(bill.Kind)
	if err != nil {
		return err
	}

	args := billArgs(bill)
	args["id"] = bill.ID
	err = tx.QueryRow(ctx,
		`UPDATE `+t.header+` SET
			bill_date = @bill_date, party_no = @party_no, total_amount = @total_amount,
			charges = @charges, final_amount = @final_amount, previous_balance = @previous_balance,
			remarks = @remarks, updated_at = NOW()
		 WHERE id = @id AND company_id = @company_id AND year_id = @year_id
		 RETURNING created_at, updated_at`,
		args,
	).Scan(&bill.CreatedAt, &bill.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s bill %d not found", bill.Kind, bill.ID)
	}
	if err != nil {
		return billWriteError(bill, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+t.items+` WHERE bill_id = @bill_id`,
		pgx.NamedArgs{"bill_id": bill.ID}); err != nil {
		return fmt.Errorf("failed to clear %s bill items: %w", bill.Kind, err)
	}
	return r.insertItemsTx(ctx, tx, t, bill)
}

func (r *BillRepository) insertItemsTx(ctx context.Context, tx pgx.Tx, t billTable, bill *models.Bill) error {
	for i := range bill.Items {
		item := &bill.Items[i]
		item.BillID = bill.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO `+t.items+` (bill_id, souda_item_id, product_name, quantity, weight, rate, amount)
			 VALUES (@bill_id, @souda_item_id, @product_name, @quantity, @weight, @rate, @amount)
			 RETURNING id`,
			pgx.NamedArgs{
				"bill_id":       bill.ID,
				"souda_item_id": item.SoudaItemID,
				"product_name":  item.ProductName,
				"quantity":      item.Quantity,
				"weight":        item.Weight,
				"rate":          item.Rate,
				"amount":        item.Amount,
			},
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert %s bill item %d: %w", bill.Kind, i, err)
		}
	}
	return nil
}

// DeleteTx removes a bill and its items. Souda items it consumed stay billed.
func (r *BillRepository) DeleteTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, id int) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+t.items+` WHERE bill_id = @bill_id`,
		pgx.NamedArgs{"bill_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s bill items: %w", kind, err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM `+t.header+` WHERE id = @id AND company_id = @company_id AND year_id = @year_id`,
		scoped(scope, pgx.NamedArgs{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to delete %s bill: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("%s bill %d not found", kind, id)
	}
	return nil
}

// GetByID loads a bill with its items
func (r *BillRepository) GetByID(ctx context.Context, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error) {
	return r.get(ctx, r.DB, scope, kind, id, false)
}

// GetForUpdateTx loads a bill and locks its header row until tx ends
func (r *BillRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error) {
	return r.get(ctx, tx, scope, kind, id, true)
}

func (r *BillRepository) get(ctx context.Context, q querier, scope models.Scope, kind models.BillKind, id int, forUpdate bool) (*models.Bill, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + billColumns + ` FROM ` + t.header + `
		WHERE id = @id AND company_id = @company_id AND year_id = @year_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	bill, err := scanBill(q.QueryRow(ctx, query, scoped(scope, pgx.NamedArgs{"id": id})))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("%s bill %d not found", kind, id)
	}
	if err != nil {
		return nil, apperr.Internal("load bill", fmt.Errorf("failed to get %s bill %d: %w", kind, id, err))
	}
	bill.Kind = kind

	items, err := r.items(ctx, q, t, bill.ID)
	if err != nil {
		return nil, apperr.Internal("load bill items", err)
	}
	bill.Items = items
	return bill, nil
}

func (r *BillRepository) items(ctx context.Context, q querier, t billTable, billID int) ([]models.BillItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, bill_id, souda_item_id, product_name, quantity, weight, rate, amount
		 FROM `+t.items+` WHERE bill_id = @bill_id ORDER BY id`,
		pgx.NamedArgs{"bill_id": billID})
	if err != nil {
		return nil, fmt.Errorf("failed to query bill items: %w", err)
	}
	defer rows.Close()

	items := []models.BillItem{}
	for rows.Next() {
		var item models.BillItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.SoudaItemID, &item.ProductName,
			&item.Quantity, &item.Weight, &item.Rate, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns headers only, newest first
func (r *BillRepository) List(ctx context.Context, scope models.Scope, kind models.BillKind, filter models.BillFilter) ([]models.Bill, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	conds := []string{"company_id = @company_id", "year_id = @year_id"}
	args := scoped(scope, pgx.NamedArgs{})
	if filter.PartyNo != "" {
		conds = append(conds, "party_no = @party_no")
		args["party_no"] = filter.PartyNo
	}
	if !filter.From.IsZero() {
		conds = append(conds, "bill_date >= @from")
		args["from"] = dateArg(filter.From)
	}
	if !filter.To.IsZero() {
		conds = append(conds, "bill_date <= @to")
		args["to"] = dateArg(filter.To)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+billColumns+` FROM `+t.header+`
		 WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY bill_date DESC, id DESC`, args)
	if err != nil {
		return nil, apperr.Internal("list bills", fmt.Errorf("failed to list %s bills: %w", kind, err))
	}
	defer rows.Close()

	bills := []models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, apperr.Internal("list bills", err)
		}
		bill.Kind = kind
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list bills", err)
	}
	return bills, nil
}

func scanBill(row pgx.Row) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.CompanyID, &b.YearID, &b.BillNo, &b.BillDate, &b.PartyNo,
		&b.TotalAmount, &b.Charges, &b.FinalAmount, &b.PreviousBalance, &b.Remarks,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func billArgs(bill *models.Bill) pgx.NamedArgs {
	return pgx.NamedArgs{
		"company_id":       bill.CompanyID,
		"year_id":          bill.YearID,
		"bill_no":          bill.BillNo,
		"bill_date":        dateArg(bill.BillDate),
		"party_no":         bill.PartyNo,
		"total_amount":     bill.TotalAmount,
		"charges":          bill.Charges,
		"final_amount":     bill.FinalAmount,
		"previous_balance": bill.PreviousBalance,
		"remarks":          bill.Remarks,
		"created_by":       bill.CreatedBy,
	}
}

// billWriteError turns unique violations into the matching conflict. The
// party/date index backs the duplicate check when two requests race.
func billWriteError(bill *models.Bill, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		if strings.HasSuffix(constraint, "_party_date") {
			return apperr.DuplicateBill(bill.PartyNo, bill.BillDate.String())
		}
		return apperr.Conflict("bill number %s already issued", bill.BillNo)
	}
	return fmt.Errorf("failed to write %s bill: %w", bill.Kind, err)
}
