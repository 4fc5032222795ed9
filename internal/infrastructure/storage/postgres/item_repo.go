package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/id"
	"stocktake/internal/core/types"
	"stocktake/internal/domain/counting"
)

const (
	itemsTable     = "items"
	movementsTable = "stock_movements"
)

// ItemRepo implements counting.Repository on Postgres. Quantities are
// stored as scaled BIGINT (see types.Quantity), monetary values as
// NUMERIC. Per-session results live in flat columns; movements are a
// child table rewritten with the item (delete + insert).
type ItemRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ counting.Repository = (*ItemRepo)(nil)

// NewItemRepo creates an item repository.
func NewItemRepo(txManager *TxManager) *ItemRepo {
	return &ItemRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// itemRow is the flat table representation of counting.Item.
type itemRow struct {
	ID           id.ID                `db:"id"`
	ArticleCode  string               `db:"article_code"`
	Emplacement  string               `db:"emplacement"`
	Description  string               `db:"description"`
	Reference    string               `db:"reference"`
	Unit         string               `db:"unit"`
	Price        decimal.NullDecimal  `db:"price"`
	InitialStock int64                `db:"initial_stock"`
	CurrentStock int64                `db:"current_stock"`

	Counting1      *int64              `db:"counting1"`
	Variance1      *int64              `db:"variance1"`
	ValueVariance1 decimal.NullDecimal `db:"value_variance1"`
	Counting2      *int64              `db:"counting2"`
	Variance2      *int64              `db:"variance2"`
	ValueVariance2 decimal.NullDecimal `db:"value_variance2"`
	Counting3      *int64              `db:"counting3"`
	Variance3      *int64              `db:"variance3"`
	ValueVariance3 decimal.NullDecimal `db:"value_variance3"`
	Counting4      *int64              `db:"counting4"`
	Variance4      *int64              `db:"variance4"`
	ValueVariance4 decimal.NullDecimal `db:"value_variance4"`

	InitialStock2 *int64 `db:"initial_stock2"`
	InitialStock3 *int64 `db:"initial_stock3"`
	InitialStock4 *int64 `db:"initial_stock4"`

	LastUpdated       time.Time `db:"last_updated"`
	CountingCompleted bool      `db:"counting_completed"`
	Position          int       `db:"position"`
}

var itemColumns = []string{
	"id", "article_code", "emplacement", "description", "reference", "unit",
	"price", "initial_stock", "current_stock",
	"counting1", "variance1", "value_variance1",
	"counting2", "variance2", "value_variance2",
	"counting3", "variance3", "value_variance3",
	"counting4", "variance4", "value_variance4",
	"initial_stock2", "initial_stock3", "initial_stock4",
	"last_updated", "counting_completed", "position",
}

func qtyPtr(q *types.Quantity) *int64 {
	if q == nil {
		return nil
	}
	v := q.Int64Scaled()
	return &v
}

func ptrQty(v *int64) *types.Quantity {
	if v == nil {
		return nil
	}
	q := types.NewQuantityFromInt64Scaled(*v)
	return &q
}

func moneyNull(m *types.Money) decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *m, Valid: true}
}

func nullMoney(d decimal.NullDecimal) *types.Money {
	if !d.Valid {
		return nil
	}
	m := d.Decimal
	return &m
}

func toRow(item *counting.Item, position int) itemRow {
	row := itemRow{
		ID:                item.ID,
		ArticleCode:       item.ArticleCode,
		Emplacement:       item.Emplacement,
		Description:       item.Description,
		Reference:         item.Reference,
		Unit:              item.Unit,
		Price:             moneyNull(item.Price),
		InitialStock:      item.InitialStock.Int64Scaled(),
		CurrentStock:      item.CurrentStock.Int64Scaled(),
		LastUpdated:       item.LastUpdated,
		CountingCompleted: item.CountingCompleted,
		Position:          position,
	}

	countings := []**int64{&row.Counting1, &row.Counting2, &row.Counting3, &row.Counting4}
	variances := []**int64{&row.Variance1, &row.Variance2, &row.Variance3, &row.Variance4}
	values := []*decimal.NullDecimal{&row.ValueVariance1, &row.ValueVariance2, &row.ValueVariance3, &row.ValueVariance4}
	for s := 1; s <= counting.MaxSessions; s++ {
		r := item.Result(s)
		*countings[s-1] = qtyPtr(r.Counting)
		*variances[s-1] = qtyPtr(r.Variance)
		*values[s-1] = moneyNull(r.ValueVariance)
	}

	row.InitialStock2 = qtyPtr(item.BaselineOverride(2))
	row.InitialStock3 = qtyPtr(item.BaselineOverride(3))
	row.InitialStock4 = qtyPtr(item.BaselineOverride(4))
	return row
}

func fromRow(row itemRow) *counting.Item {
	item := &counting.Item{
		ID:                row.ID,
		ArticleCode:       row.ArticleCode,
		Emplacement:       row.Emplacement,
		Description:       row.Description,
		Reference:         row.Reference,
		Unit:              row.Unit,
		Price:             nullMoney(row.Price),
		InitialStock:      types.NewQuantityFromInt64Scaled(row.InitialStock),
		CurrentStock:      types.NewQuantityFromInt64Scaled(row.CurrentStock),
		LastUpdated:       row.LastUpdated,
		CountingCompleted: row.CountingCompleted,
		Movements:         []counting.StockMovement{},
	}

	countings := []*int64{row.Counting1, row.Counting2, row.Counting3, row.Counting4}
	variances := []*int64{row.Variance1, row.Variance2, row.Variance3, row.Variance4}
	values := []decimal.NullDecimal{row.ValueVariance1, row.ValueVariance2, row.ValueVariance3, row.ValueVariance4}
	for s := 0; s < counting.MaxSessions; s++ {
		item.Sessions[s] = counting.SessionResult{
			Counting:      ptrQty(countings[s]),
			Variance:      ptrQty(variances[s]),
			ValueVariance: nullMoney(values[s]),
		}
	}

	item.BaselineOverrides[1] = ptrQty(row.InitialStock2)
	item.BaselineOverrides[2] = ptrQty(row.InitialStock3)
	item.BaselineOverrides[3] = ptrQty(row.InitialStock4)
	return item
}

func rowValues(row itemRow) []any {
	return []any{
		row.ID, row.ArticleCode, row.Emplacement, row.Description, row.Reference, row.Unit,
		row.Price, row.InitialStock, row.CurrentStock,
		row.Counting1, row.Variance1, row.ValueVariance1,
		row.Counting2, row.Variance2, row.ValueVariance2,
		row.Counting3, row.Variance3, row.ValueVariance3,
		row.Counting4, row.Variance4, row.ValueVariance4,
		row.InitialStock2, row.InitialStock3, row.InitialStock4,
		row.LastUpdated, row.CountingCompleted, row.Position,
	}
}

// movementRow is the table representation of counting.StockMovement.
type movementRow struct {
	ID        id.ID     `db:"id"`
	ItemID    id.ID     `db:"item_id"`
	Type      string    `db:"type"`
	Quantity  int64     `db:"quantity"`
	Session   int       `db:"session"`
	Timestamp time.Time `db:"timestamp"`
	Note      string    `db:"note"`
	Position  int       `db:"position"`
}

// List returns all items with their movements, in import order.
func (r *ItemRepo) List(ctx context.Context) ([]*counting.Item, error) {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.builder.
		Select(itemColumns...).
		From(itemsTable).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	items := make([]*counting.Item, 0, len(rows))
	byID := make(map[id.ID]*counting.Item, len(rows))
	for _, row := range rows {
		item := fromRow(row)
		items = append(items, item)
		byID[item.ID] = item
	}

	if len(items) == 0 {
		return items, nil
	}

	movSQL, movArgs, err := r.builder.
		Select("id", "item_id", "type", "quantity", "session", "timestamp", "note", "position").
		From(movementsTable).
		OrderBy("item_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}

	var movs []movementRow
	if err := pgxscan.Select(ctx, querier, &movs, movSQL, movArgs...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	for _, m := range movs {
		if item, ok := byID[m.ItemID]; ok {
			item.Movements = append(item.Movements, movementFromRow(m))
		}
	}
	return items, nil
}

// GetByID retrieves one item with its movements.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*counting.Item, error) {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.builder.
		Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row itemRow
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	item := fromRow(row)

	movSQL, movArgs, err := r.builder.
		Select("id", "item_id", "type", "quantity", "session", "timestamp", "note", "position").
		From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}

	var movs []movementRow
	if err := pgxscan.Select(ctx, querier, &movs, movSQL, movArgs...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	for _, m := range movs {
		item.Movements = append(item.Movements, movementFromRow(m))
	}
	return item, nil
}

func movementFromRow(m movementRow) counting.StockMovement {
	return counting.StockMovement{
		ID:        m.ID,
		Type:      counting.MovementType(m.Type),
		Quantity:  types.NewQuantityFromInt64Scaled(m.Quantity),
		Session:   m.Session,
		Timestamp: m.Timestamp,
		Note:      m.Note,
	}
}

// ReplaceAll swaps the whole collection in import order.
func (r *ItemRepo) ReplaceAll(ctx context.Context, items []*counting.Item) error {
	if err := r.DeleteAll(ctx); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	querier := r.txManager.GetQuerier(ctx)

	// Insert in chunks: squirrel builds one statement per batch and very
	// large imports would exceed the Postgres parameter limit otherwise.
	const chunk = 500
	for start := 0; start < len(items); start += chunk {
		end := start + chunk
		if end > len(items) {
			end = len(items)
		}
		q := r.builder.Insert(itemsTable).Columns(itemColumns...)
		for i, item := range items[start:end] {
			q = q.Values(rowValues(toRow(item, start+i))...)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert items: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}

	for i, item := range items {
		if err := r.saveMovements(ctx, items[i].ID, item.Movements); err != nil {
			return err
		}
	}
	return nil
}

// Save persists one item, preserving its import position.
func (r *ItemRepo) Save(ctx context.Context, item *counting.Item) error {
	querier := r.txManager.GetQuerier(ctx)

	var position int
	posSQL, posArgs, err := r.builder.
		Select("position").
		From(itemsTable).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build position query: %w", err)
	}
	if err := querier.QueryRow(ctx, posSQL, posArgs...).Scan(&position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("item", item.ID.String())
		}
		return fmt.Errorf("get position: %w", err)
	}

	row := toRow(item, position)
	q := r.builder.Update(itemsTable).Where(squirrel.Eq{"id": item.ID})
	values := rowValues(row)
	for i, col := range itemColumns {
		if col == "id" {
			continue
		}
		q = q.Set(col, values[i])
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	return r.saveMovements(ctx, item.ID, item.Movements)
}

// SaveMany persists a batch of updated items.
func (r *ItemRepo) SaveMany(ctx context.Context, items []*counting.Item) error {
	for _, item := range items {
		if err := r.Save(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// saveMovements rewrites the movement log for one item.
func (r *ItemRepo) saveMovements(ctx context.Context, itemID id.ID, movements []counting.StockMovement) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + movementsTable + " WHERE item_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, itemID); err != nil {
		return fmt.Errorf("delete existing movements: %w", err)
	}
	if len(movements) == 0 {
		return nil
	}

	q := r.builder.
		Insert(movementsTable).
		Columns("id", "item_id", "type", "quantity", "session", "timestamp", "note", "position")
	for pos, m := range movements {
		q = q.Values(m.ID, itemID, string(m.Type), m.Quantity.Int64Scaled(), m.Session, m.Timestamp, m.Note, pos)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert movements: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// DeleteAll wipes the collection; movements go with it via FK cascade,
// deleted explicitly anyway to keep the statement order obvious.
func (r *ItemRepo) DeleteAll(ctx context.Context) error {
	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, "DELETE FROM "+movementsTable); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	if _, err := querier.Exec(ctx, "DELETE FROM "+itemsTable); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}
