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

type SoudaRepository struct {
	DB *pgxpool.Pool
}

func NewSoudaRepository(db *pgxpool.Pool) *SoudaRepository {
	return &SoudaRepository{DB: db}
}

// billedColumns maps a bill kind to the party column and flag it consumes
var billedColumns = map[models.BillKind]struct{ party, flag string }{
	models.BillKindCustomer: {party: "customer_no", flag: "customer_billed"},
	models.BillKindFarmer:   {party: "farmer_no", flag: "farmer_billed"},
}

const soudaItemColumns = `si.id, si.souda_id, si.farmer_no, si.customer_no, si.product_name,
	si.quantity, si.weight, si.rate, si.amount, si.customer_billed, si.farmer_billed`

func (r *SoudaRepository) CreateTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO soudas (company_id, year_id, souda_no, souda_date, remarks, created_by)
		 VALUES (@company_id, @year_id, @souda_no, @souda_date, @remarks, @created_by)
		 RETURNING id, created_at, updated_at`,
		pgx.NamedArgs{
			"company_id": souda.CompanyID,
			"year_id":    souda.YearID,
			"souda_no":   souda.SoudaNo,
			"souda_date": dateArg(souda.SoudaDate),
			"remarks":    souda.Remarks,
			"created_by": souda.CreatedBy,
		},
	).Scan(&souda.ID, &souda.CreatedAt, &souda.UpdatedAt)
	if _, dup := uniqueViolation(err); dup {
		return apperr.Conflict("souda number %s already issued", souda.SoudaNo)
	}
	if err != nil {
		return fmt.Errorf("failed to create souda: %w", err)
	}
	return r.insertItemsTx(ctx, tx, souda)
}

// UpdateTx rewrites the header and replaces all items in tx
func (r *SoudaRepository) UpdateTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error {
	err := tx.QueryRow(ctx,
		`UPDATE soudas SET souda_date = @souda_date, remarks = @remarks, updated_at = NOW()
		 WHERE id = @id AND company_id = @company_id AND year_id = @year_id
		 RETURNING created_at, updated_at`,
		pgx.NamedArgs{
			"id":         souda.ID,
			"company_id": souda.CompanyID,
			"year_id":    souda.YearID,
			"souda_date": dateArg(souda.SoudaDate),
			"remarks":    souda.Remarks,
		},
	).Scan(&souda.CreatedAt, &souda.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("souda %d not found", souda.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update souda %d: %w", souda.ID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM souda_items WHERE souda_id = @souda_id`,
		pgx.NamedArgs{"souda_id": souda.ID}); err != nil {
		return fmt.Errorf("failed to clear souda items: %w", err)
	}
	return r.insertItemsTx(ctx, tx, souda)
}

func (r *SoudaRepository) insertItemsTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error {
	for i := range souda.Items {
		item := &souda.Items[i]
		item.SoudaID = souda.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO souda_items (souda_id, farmer_no, customer_no, product_name, quantity, weight, rate, amount)
			 VALUES (@souda_id, @farmer_no, @customer_no, @product_name, @quantity, @weight, @rate, @amount)
			 RETURNING id`,
			pgx.NamedArgs{
				"souda_id":     souda.ID,
				"farmer_no":    item.FarmerNo,
				"customer_no":  item.CustomerNo,
				"product_name": item.ProductName,
				"quantity":     item.Quantity,
				"weight":       item.Weight,
				"rate":         item.Rate,
				"amount":       item.Amount,
			},
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert souda item %d: %w", i, err)
		}
	}
	return nil
}

func (r *SoudaRepository) DeleteTx(ctx context.Context, tx pgx.Tx, scope models.Scope, id int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM souda_items WHERE souda_id = @souda_id`,
		pgx.NamedArgs{"souda_id": id}); err != nil {
		return fmt.Errorf("failed to delete souda items: %w", err)
	}
	tag, err := tx.Exec(ctx,
		`DELETE FROM soudas WHERE id = @id AND company_id = @company_id AND year_id = @year_id`,
		scoped(scope, pgx.NamedArgs{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to delete souda %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("souda %d not found", id)
	}
	return nil
}

func (r *SoudaRepository) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Souda, error) {
	return r.get(ctx, r.DB, scope, id, false)
}

// GetForUpdateTx locks the souda header so billing cannot race an edit
func (r *SoudaRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, id int) (*models.Souda, error) {
	return r.get(ctx, tx, scope, id, true)
}

func (r *SoudaRepository) get(ctx context.Context, q querier, scope models.Scope, id int, forUpdate bool) (*models.Souda, error) {
	query := `SELECT id, company_id, year_id, souda_no, souda_date, remarks, created_by, created_at, updated_at
		FROM soudas WHERE id = @id AND company_id = @company_id AND year_id = @year_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var s models.Souda
	err := q.QueryRow(ctx, query, scoped(scope, pgx.NamedArgs{"id": id})).Scan(
		&s.ID, &s.CompanyID, &s.YearID, &s.SoudaNo, &s.SoudaDate, &s.Remarks,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("souda %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal("load souda", fmt.Errorf("failed to get souda %d: %w", id, err))
	}

	rows, err := q.Query(ctx,
		`SELECT `+soudaItemColumns+` FROM souda_items si WHERE si.souda_id = @souda_id ORDER BY si.id`,
		pgx.NamedArgs{"souda_id": id})
	if err != nil {
		return nil, apperr.Internal("load souda items", err)
	}
	defer rows.Close()

	s.Items = []models.SoudaItem{}
	for rows.Next() {
		var item models.SoudaItem
		if err := scanSoudaItem(rows, &item); err != nil {
			return nil, apperr.Internal("load souda items", err)
		}
		s.Items = append(s.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("load souda items", err)
	}
	return &s, nil
}

// List returns souda headers in the date range, newest first
func (r *SoudaRepository) List(ctx context.Context, scope models.Scope, from, to models.Date) ([]models.Souda, error) {
	conds := []string{"company_id = @company_id", "year_id = @year_id"}
	args := scoped(scope, pgx.NamedArgs{})
	if !from.IsZero() {
		conds = append(conds, "souda_date >= @from")
		args["from"] = dateArg(from)
	}
	if !to.IsZero() {
		conds = append(conds, "souda_date <= @to")
		args["to"] = dateArg(to)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, company_id, year_id, souda_no, souda_date, remarks, created_by, created_at, updated_at
		 FROM soudas WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY souda_date DESC, id DESC`, args)
	if err != nil {
		return nil, apperr.Internal("list soudas", err)
	}
	defer rows.Close()

	soudas := []models.Souda{}
	for rows.Next() {
		var s models.Souda
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.YearID, &s.SoudaNo, &s.SoudaDate, &s.Remarks,
			&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, apperr.Internal("list soudas", err)
		}
		soudas = append(soudas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list soudas", err)
	}
	return soudas, nil
}

// MarkBilledTx sets the billed flag of the bill kind on every id. Each item
// must belong to partyNo and still be unbilled, otherwise nothing is marked.
func (r *SoudaRepository) MarkBilledTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, partyNo string, ids []int) error {
	ids = uniqueInts(ids)
	if len(ids) == 0 {
		return nil
	}
	cols, ok := billedColumns[kind]
	if !ok {
		return apperr.Validation("kind", "unknown bill kind %q", kind)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE souda_items si SET `+cols.flag+` = TRUE
		 FROM soudas s
		 WHERE si.souda_id = s.id
		   AND s.company_id = @company_id AND s.year_id = @year_id
		   AND si.id = ANY(@ids) AND si.`+cols.party+` = @party_no
		   AND NOT si.`+cols.flag,
		scoped(scope, pgx.NamedArgs{"ids": ids, "party_no": partyNo}))
	if err != nil {
		return fmt.Errorf("failed to mark souda items billed: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		// the surrounding transaction rolls back the partial update
		return apperr.Conflict("souda items are already billed or do not belong to %s", partyNo)
	}
	return nil
}

// ListCandidates returns the unbilled souda items of partyNo dated date
func (r *SoudaRepository) ListCandidates(ctx context.Context, scope models.Scope, kind models.BillKind, partyNo string, date models.Date) ([]models.CandidateItem, error) {
	cols, ok := billedColumns[kind]
	if !ok {
		return nil, apperr.Validation("kind", "unknown bill kind %q", kind)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+soudaItemColumns+`, s.souda_no, s.souda_date
		 FROM souda_items si
		 JOIN soudas s ON s.id = si.souda_id
		 WHERE s.company_id = @company_id AND s.year_id = @year_id
		   AND s.souda_date = @souda_date
		   AND si.`+cols.party+` = @party_no
		   AND NOT si.`+cols.flag+`
		 ORDER BY s.id, si.id`,
		scoped(scope, pgx.NamedArgs{"party_no": partyNo, "souda_date": dateArg(date)}))
	if err != nil {
		return nil, apperr.Internal("list candidate items", err)
	}
	defer rows.Close()

	items := []models.CandidateItem{}
	for rows.Next() {
		var c models.CandidateItem
		if err := rows.Scan(&c.ID, &c.SoudaID, &c.FarmerNo, &c.CustomerNo, &c.ProductName,
			&c.Quantity, &c.Weight, &c.Rate, &c.Amount, &c.CustomerBilled, &c.FarmerBilled,
			&c.SoudaNo, &c.SoudaDate); err != nil {
			return nil, apperr.Internal("list candidate items", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list candidate items", err)
	}
	return items, nil
}

func scanSoudaItem(row pgx.Row, item *models.SoudaItem) error {
	return row.Scan(&item.ID, &item.SoudaID, &item.FarmerNo, &item.CustomerNo, &item.ProductName,
		&item.Quantity, &item.Weight, &item.Rate, &item.Amount, &item.CustomerBilled, &item.FarmerBilled)
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
