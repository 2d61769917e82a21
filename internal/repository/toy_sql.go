package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"incywincy-api/internal/model"
	"incywincy-api/internal/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const toyTable = "toys"

// likeEscape is the LIKE escape character. A backslash would need
// per-dialect quoting in MySQL.
const likeEscape = "!"

var columns = map[query.Field]string{
	query.FieldID:                 "id",
	query.FieldPhotoURL:           "photo_url",
	query.FieldToyName:            "toy_name",
	query.FieldSellerName:         "seller_name",
	query.FieldSellerEmail:        "seller_email",
	query.FieldSubCategory:        "sub_category",
	query.FieldPrice:              "price",
	query.FieldRatings:            "ratings",
	query.FieldAvailableQuantity:  "available_quantity",
	query.FieldDetailsDescription: "details_description",
}

// dialect captures what differs between the SQL backends.
type dialect struct {
	name        string
	placeholder func(n int) string
	schema      []string
	// nullsOrder is appended to ORDER BY so absent prices sort first when
	// ascending, as they do in a document store.
	nullsOrder func(query.Direction) string
	// fold wraps a column so it compares the way strings.ToLower folds the
	// search operand.
	fold func(column string) string
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

func noNullsOrder(query.Direction) string { return "" }

func lowerFold(column string) string { return "LOWER(" + column + ")" }

// SQLToyRepository implements ToyRepository on a relational table, one row
// per listing and one nullable column per attribute.
type SQLToyRepository struct {
	db      *sql.DB
	dialect dialect
}

func newSQLToyRepository(ctx context.Context, db *sql.DB, d dialect) (*SQLToyRepository, error) {
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return &SQLToyRepository{db: db, dialect: d}, nil
}

// Find returns every listing matching q.
func (r *SQLToyRepository) Find(ctx context.Context, q query.Find) ([]*model.ToyListing, error) {
	fields := selectFields(q.Projection)
	stmt, args := r.selectStatement(fields, q)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, sqlError("find toys", err)
	}
	defer rows.Close()

	toys := make([]*model.ToyListing, 0)
	for rows.Next() {
		toy, err := scanToy(rows, fields)
		if err != nil {
			return nil, sqlError("scan toy", err)
		}
		toys = append(toys, toy)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlError("iterate toys", err)
	}
	return toys, nil
}

// FindOne returns the first match, or nil.
func (r *SQLToyRepository) FindOne(ctx context.Context, q query.Find) (*model.ToyListing, error) {
	q.Limit = 1
	toys, err := r.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(toys) == 0 {
		return nil, nil
	}
	return toys[0], nil
}

// Insert stores a new listing.
func (r *SQLToyRepository) Insert(ctx context.Context, toy *model.ToyListing) (*model.InsertResult, error) {
	if toy.ID.IsZero() {
		toy.ID = primitive.NewObjectID()
	}

	cols := make([]string, 0, len(query.Fields))
	marks := make([]string, 0, len(query.Fields))
	args := make([]interface{}, 0, len(query.Fields))
	for i, f := range query.Fields {
		cols = append(cols, columns[f])
		marks = append(marks, r.dialect.placeholder(i+1))
		args = append(args, sqlValue(query.Value(toy, f)))
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", toyTable, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, sqlError("insert toy", err)
	}
	return &model.InsertResult{Acknowledged: true, InsertedID: toy.ID}, nil
}

// Update applies the patch. Matched and modified counts follow document
// store semantics: an update that writes identical values matches but does
// not modify.
func (r *SQLToyRepository) Update(ctx context.Context, p query.Patch) (*model.UpdateResult, error) {
	current, err := r.FindOne(ctx, query.ToyByID(p.ID))
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &model.UpdateResult{Acknowledged: true}, nil
	}

	changed, err := query.Apply(current, p)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &model.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	return r.writePatch(ctx, p)
}

// writePatch runs the UPDATE for a patch known to change the row. Counts come
// from the statement itself, so a row deleted since it was read reports no
// match.
func (r *SQLToyRepository) writePatch(ctx context.Context, p query.Patch) (*model.UpdateResult, error) {
	sets := make([]string, 0, len(p.Set))
	args := make([]interface{}, 0, len(p.Set)+1)
	for i, a := range p.Set {
		sets = append(sets, fmt.Sprintf("%s = %s", columns[a.Field], r.dialect.placeholder(i+1)))
		args = append(args, a.Value)
	}
	args = append(args, p.ID.Hex())

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		toyTable, strings.Join(sets, ", "), r.dialect.placeholder(len(args)))
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, sqlError("update toy", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, sqlError("update toy", err)
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

// Delete removes one listing.
func (r *SQLToyRepository) Delete(ctx context.Context, id primitive.ObjectID) (*model.DeleteResult, error) {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = %s", toyTable, r.dialect.placeholder(1))
	res, err := r.db.ExecContext(ctx, stmt, id.Hex())
	if err != nil {
		return nil, sqlError("delete toy", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, sqlError("delete toy", err)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// Ping checks the database connection.
func (r *SQLToyRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetStats returns statistics about the toy table.
func (r *SQLToyRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"
	stats["driver"] = r.dialect.name

	var total, categories int64
	stmt := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT sub_category) FROM %s", toyTable)
	if err := r.db.QueryRowContext(ctx, stmt).Scan(&total, &categories); err != nil {
		return stats, sqlError("count toys", err)
	}
	stats["total_toys"] = total
	stats["sub_categories"] = categories

	dbStats := r.db.Stats()
	stats["open_connections"] = dbStats.OpenConnections
	stats["in_use"] = dbStats.InUse

	return stats, nil
}

// Close closes the database connection.
func (r *SQLToyRepository) Close() error {
	return r.db.Close()
}

func (r *SQLToyRepository) selectStatement(fields []query.Field, q query.Find) (string, []interface{}) {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = columns[f]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), toyTable)

	args := make([]interface{}, 0, len(q.Filter))
	for i, c := range q.Filter {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, conditionArg(c))
		mark := r.dialect.placeholder(len(args))
		switch c.Op {
		case query.ContainsFold:
			fmt.Fprintf(&b, "%s LIKE %s ESCAPE '%s'", r.dialect.fold(columns[c.Field]), mark, likeEscape)
		default:
			fmt.Fprintf(&b, "%s = %s", columns[c.Field], mark)
		}
	}

	if q.Sort.Direction != query.Unsorted {
		dir := "ASC"
		if q.Sort.Direction == query.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s%s, id", columns[q.Sort.Field], dir, r.dialect.nullsOrder(q.Sort.Direction))
	} else {
		b.WriteString(" ORDER BY id")
	}

	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args
}

func conditionArg(c query.Condition) interface{} {
	if c.Op == query.ContainsFold {
		return "%" + escapeLike(strings.ToLower(fmt.Sprint(c.Value))) + "%"
	}
	return sqlValue(c.Value)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func sqlValue(v interface{}) interface{} {
	if id, ok := v.(primitive.ObjectID); ok {
		return id.Hex()
	}
	return v
}

// selectFields always leads with the identifier.
func selectFields(projection []query.Field) []query.Field {
	if projection == nil {
		return query.Fields
	}
	fields := []query.Field{query.FieldID}
	for _, f := range projection {
		if f != query.FieldID {
			fields = append(fields, f)
		}
	}
	return fields
}

func scanToy(rows *sql.Rows, fields []query.Field) (*model.ToyListing, error) {
	var (
		id       string
		quantity sql.NullInt64
		strs     = map[query.Field]*sql.NullString{}
		floats   = map[query.Field]*sql.NullFloat64{}
	)

	dest := make([]interface{}, len(fields))
	for i, f := range fields {
		switch f {
		case query.FieldID:
			dest[i] = &id
		case query.FieldPrice, query.FieldRatings:
			floats[f] = &sql.NullFloat64{}
			dest[i] = floats[f]
		case query.FieldAvailableQuantity:
			dest[i] = &quantity
		default:
			strs[f] = &sql.NullString{}
			dest[i] = strs[f]
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("stored id %q: %w", id, err)
	}
	toy := &model.ToyListing{ID: oid}
	toy.PhotoURL = nullString(strs[query.FieldPhotoURL])
	toy.ToyName = nullString(strs[query.FieldToyName])
	toy.SellerName = nullString(strs[query.FieldSellerName])
	toy.SellerEmail = nullString(strs[query.FieldSellerEmail])
	toy.SubCategory = nullString(strs[query.FieldSubCategory])
	toy.DetailsDescription = nullString(strs[query.FieldDetailsDescription])
	toy.Price = nullFloat(floats[query.FieldPrice])
	toy.Ratings = nullFloat(floats[query.FieldRatings])
	if quantity.Valid {
		v := quantity.Int64
		toy.AvailableQuantity = &v
	}
	return toy, nil
}

func nullString(ns *sql.NullString) *string {
	if ns == nil || !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullFloat(nf *sql.NullFloat64) *float64 {
	if nf == nil || !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// sqlError marks connection failures as ErrUnavailable.
func sqlError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: failed to %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
