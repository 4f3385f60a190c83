package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/dorm-finder/internal/datasource"
	"github.com/iliyamo/dorm-finder/internal/model"
)

// DormRepo reads dorm records and their child rows from MySQL and hands
// them out as raw records: column names become keys and child rows become
// nested lists, matching the shape the listing normalizer expects.
type DormRepo struct{ db *sql.DB }

func NewDormRepo(db *sql.DB) *DormRepo { return &DormRepo{db: db} }

const dormColumns = `d.id, d.name_th, d.name_en, d.address, d.district, d.province,
	d.latitude, d.longitude, d.price_min, d.price_max,
	d.water_rate, d.electric_rate, d.advance_months, d.deposit_months,
	d.gender_policy, d.pet_policy, d.smoking_policy,
	d.phone, d.email, d.line_id, d.zone, d.cover_image_url, d.amenities_text,
	d.total_rooms, d.available_rooms, d.is_verified, d.rating_avg, d.review_count`

// searchable columns for the token filter
var dormTextColumns = []string{"d.name_th", "d.name_en", "d.address", "d.district", "d.province"}

const defaultListingLimit = 500

// FetchListings returns dorms whose text columns contain every token of
// q.Text, newest first.
func (r *DormRepo) FetchListings(ctx context.Context, q datasource.Query) ([]model.RawRecord, error) {
	where := []string{}
	args := []any{}
	for _, tok := range strings.Fields(strings.ToLower(q.Text)) {
		ors := make([]string, len(dormTextColumns))
		for i, col := range dormTextColumns {
			ors[i] = "LOWER(" + col + ") LIKE ?"
			args = append(args, "%"+escapeLike(tok)+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListingLimit
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+dormColumns+" FROM dorms d WHERE "+cond+" ORDER BY d.id DESC LIMIT ?", args...)
	if err != nil {
		return nil, fmt.Errorf("query dorms: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachChildren(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// FetchListingDetail returns one dorm with its room types, amenities, images
// and reviews.
func (r *DormRepo) FetchListingDetail(ctx context.Context, id string) (model.RawRecord, error) {
	dormID, err := parseDormID(id)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+dormColumns+" FROM dorms d WHERE d.id=? LIMIT 1", dormID)
	if err != nil {
		return nil, fmt.Errorf("query dorm: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, datasource.ErrNotFound
	}
	if err := r.attachChildren(ctx, recs); err != nil {
		return nil, err
	}
	reviews, err := r.FetchReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	list := make([]any, len(reviews))
	for i, rv := range reviews {
		list[i] = map[string]any{"rating": rv.Rating, "comment": rv.Comment, "author": rv.Author}
	}
	recs[0]["reviews"] = list
	return recs[0], nil
}

// FetchReviews lists a dorm's reviews, newest first.
func (r *DormRepo) FetchReviews(ctx context.Context, dormID string) ([]model.Review, error) {
	id, err := parseDormID(dormID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT rv.id, rv.user_id, COALESCE(u.display_name, ''), rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		LEFT JOIN users u ON u.id = rv.user_id
		WHERE rv.dorm_id=?
		ORDER BY rv.created_at DESC, rv.id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var (
			rv    model.Review
			rowID uint64
		)
		if err := rows.Scan(&rowID, &rv.UserID, &rv.Author, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.ID = strconv.FormatUint(rowID, 10)
		rv.DormID = dormID
		out = append(out, rv)
	}
	return out, rows.Err()
}

// SubmitReview stores a review. A user reviews a dorm at most once; the
// unique key on (dorm_id, user_id) turns a second attempt into a validation
// error.
func (r *DormRepo) SubmitReview(ctx context.Context, dormID string, userID uint64, in model.ReviewInput) (model.Review, error) {
	if userID == 0 {
		return model.Review{}, datasource.ErrNotAuthenticated
	}
	id, err := parseDormID(dormID)
	if err != nil {
		return model.Review{}, err
	}
	var exists int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM dorms WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Review{}, datasource.ErrNotFound
		}
		return model.Review{}, err
	}
	now := time.Now().UTC()
	comment := strings.TrimSpace(in.Comment)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (dorm_id, user_id, rating, comment, created_at) VALUES (?,?,?,?,?)",
		id, userID, in.Rating, comment, now)
	if err != nil {
		if isDuplicate(err) {
			return model.Review{}, &datasource.ValidationError{Message: "you have already reviewed this dorm"}
		}
		return model.Review{}, err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return model.Review{}, err
	}
	return model.Review{
		ID:        strconv.FormatInt(rowID, 10),
		DormID:    dormID,
		UserID:    userID,
		Rating:    float64(in.Rating),
		Comment:   comment,
		CreatedAt: now,
	}, nil
}

// UpdateRatingSummary stores the precomputed average and count.
func (r *DormRepo) UpdateRatingSummary(ctx context.Context, dormID string, avg float64, count int) error {
	id, err := parseDormID(dormID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "UPDATE dorms SET rating_avg=?, review_count=? WHERE id=?", avg, count, id)
	return err
}

// SetVerified flips the verification flag.
func (r *DormRepo) SetVerified(ctx context.Context, dormID string, verified bool) error {
	id, err := parseDormID(dormID)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE dorms SET is_verified=? WHERE id=?", verified, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for an unchanged row, so confirm the dorm exists.
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM dorms WHERE id=? LIMIT 1", id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return datasource.ErrNotFound
			}
			return err
		}
	}
	return nil
}

// attachChildren loads room types, amenities and images for recs in three
// batched queries.
func (r *DormRepo) attachChildren(ctx context.Context, recs []model.RawRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]any, 0, len(recs))
	byID := make(map[string]model.RawRecord, len(recs))
	for _, rec := range recs {
		id := fmt.Sprint(rec["id"])
		ids = append(ids, rec["id"])
		byID[id] = rec
	}
	in := placeholders(len(ids))

	children := []struct {
		key   string
		query string
		shape func(model.RawRecord) any
	}{
		{"room_types", "SELECT dorm_id, name, cooling, price FROM room_types WHERE dorm_id IN (" + in + ") ORDER BY dorm_id, price, id",
			func(row model.RawRecord) any { return map[string]any(row) }},
		{"dorm_amenities", `SELECT da.dorm_id, a.name_th, a.name_en FROM dorm_amenities da
			JOIN amenities a ON a.id = da.amenity_id
			WHERE da.dorm_id IN (` + in + `) ORDER BY da.dorm_id, a.id`,
			func(row model.RawRecord) any {
				return map[string]any{"amenity": map[string]any{"name_th": row["name_th"], "name_en": row["name_en"]}}
			}},
		{"images", "SELECT dorm_id, url FROM dorm_images WHERE dorm_id IN (" + in + ") ORDER BY dorm_id, sort_order, id",
			func(row model.RawRecord) any { return row["url"] }},
	}
	for _, ch := range children {
		rows, err := r.db.QueryContext(ctx, ch.query, ids...)
		if err != nil {
			return fmt.Errorf("query %s: %w", ch.key, err)
		}
		childRows, err := scanRecords(rows)
		if err != nil {
			return err
		}
		for _, row := range childRows {
			parent, ok := byID[fmt.Sprint(row["dorm_id"])]
			if !ok {
				continue
			}
			delete(row, "dorm_id")
			list, _ := parent[ch.key].([]any)
			parent[ch.key] = append(list, ch.shape(row))
		}
	}
	return nil
}

// scanRecords turns every row into a RawRecord keyed by column name. NULL
// columns are left out so the resolver falls through to its next candidate.
func scanRecords(rows *sql.Rows) ([]model.RawRecord, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []model.RawRecord{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(model.RawRecord, len(cols))
		for i, col := range cols {
			switch v := vals[i].(type) {
			case nil:
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func parseDormID(id string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || n == 0 {
		return 0, datasource.ErrNotFound
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func isDuplicate(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
