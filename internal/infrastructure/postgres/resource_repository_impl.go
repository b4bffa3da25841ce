package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

var dialect = goqu.Dialect("postgres")

const resourceColumns = `id::text, name, type, building, floor, description, photo_url, lng, lat,
	owner_id::text, ratings, rating_count, rating_sum, average_rating, version, created_at, updated_at`

// The GiST prefilter runs on the sphere and is widened slightly so that
// rounding never drops a point the haversine check would keep.
const searchSlack = 1.001

// addRatingSQL appends one rating and moves every aggregate in the same
// row write. The predicate is re-checked after the row lock is taken, so a
// concurrent duplicate from the same rater updates nothing.
const addRatingSQL = `
	UPDATE resources SET
		ratings = ratings || jsonb_build_array(jsonb_build_object(
			'user_id', $2::text,
			'score', $3::int,
			'comment', $4::text,
			'created_at', $5::timestamptz)),
		rating_count = rating_count + 1,
		rating_sum = rating_sum + $3::int,
		average_rating = (rating_sum + $3::int)::double precision / (rating_count + 1),
		version = version + 1,
		updated_at = $5::timestamptz
	WHERE id = $1
	  AND NOT ratings @> jsonb_build_array(jsonb_build_object('user_id', $2::text))
	RETURNING ` + resourceColumns

type ResourceRepository struct {
	pool *pgxpool.Pool
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

type ratingDoc struct {
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func scanResource(row pgx.Row) (*entity.Resource, error) {
	var (
		r       entity.Resource
		typ     string
		ratings []byte
	)
	err := row.Scan(&r.ID, &r.Name, &typ, &r.Building, &r.Floor, &r.Description, &r.PhotoURL,
		&r.Location.Lng, &r.Location.Lat, &r.OwnerID, &ratings, &r.RatingCount, &r.RatingSum,
		&r.AverageRating, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Type = entity.ResourceType(typ)

	var docs []ratingDoc
	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &docs); err != nil {
			return nil, apperror.Internal("decode ratings", err)
		}
	}
	r.Ratings = make([]entity.Rating, len(docs))
	for i, d := range docs {
		r.Ratings[i] = entity.Rating{UserID: d.UserID, Score: d.Score, Comment: d.Comment, CreatedAt: d.CreatedAt}
	}
	return &r, nil
}

func (r *ResourceRepository) queryAll(ctx context.Context, sql string, args []interface{}, classifyErr func(error) error) ([]*entity.Resource, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classifyErr(err)
	}
	defer rows.Close()

	out := []*entity.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, classifyErr(err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr(err)
	}
	return out, nil
}

func notFound(err error) error {
	return classify(err, resourceNotFoundMessage)
}

func buildInsert(res *entity.Resource) (string, []interface{}, error) {
	return dialect.Insert("resources").
		Prepared(true).
		Rows(goqu.Record{
			"name":        res.Name,
			"type":        string(res.Type),
			"building":    res.Building,
			"floor":       res.Floor,
			"description": res.Description,
			"photo_url":   res.PhotoURL,
			"lng":         res.Location.Lng,
			"lat":         res.Location.Lat,
			"owner_id":    res.OwnerID,
		}).
		Returning(goqu.L(resourceColumns)).
		ToSQL()
}

func (r *ResourceRepository) Create(ctx context.Context, res *entity.Resource) error {
	query, args, err := buildInsert(res)
	if err != nil {
		return apperror.Internal("build resource insert", err)
	}
	stored, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return notFound(err)
	}
	*res = *stored
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*entity.Resource, error) {
	query, args, err := dialect.From("resources").
		Prepared(true).
		Select(goqu.L(resourceColumns)).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperror.Internal("build resource select", err)
	}
	res, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

func newestFirst(ds *goqu.SelectDataset, limit int) *goqu.SelectDataset {
	ds = ds.Order(goqu.I("created_at").Desc(), goqu.I("id").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	return ds
}

func (r *ResourceRepository) List(ctx context.Context, limit int) ([]*entity.Resource, error) {
	query, args, err := newestFirst(dialect.From("resources").Prepared(true).Select(goqu.L(resourceColumns)), limit).ToSQL()
	if err != nil {
		return nil, apperror.Internal("build resource list", err)
	}
	return r.queryAll(ctx, query, args, notFound)
}

// buildPatch produces the single conditional UPDATE for a normalized patch.
// Moving lng/lat recomputes the generated location column, and with it the
// GiST entry, in the same row write.
func buildPatch(id, ownerID string, patch entity.ResourcePatch) (string, []interface{}, error) {
	rec := goqu.Record{
		"version":    goqu.L("version + 1"),
		"updated_at": goqu.L("now()"),
	}
	if patch.Name.Set {
		rec["name"] = patch.Name.Value
	}
	if patch.Type.Set {
		rec["type"] = patch.Type.Value
	}
	if patch.Building.Set {
		rec["building"] = patch.Building.Value
	}
	if patch.Floor.Set {
		rec["floor"] = patch.Floor.Value
	}
	if patch.Description.Set {
		rec["description"] = patch.Description.Value
	}
	if patch.PhotoURL.Set {
		rec["photo_url"] = patch.PhotoURL.Value
	}
	if patch.Location.Set {
		rec["lng"] = patch.Location.Value.Lng
		rec["lat"] = patch.Location.Value.Lat
	}
	return dialect.Update("resources").
		Prepared(true).
		Set(rec).
		Where(goqu.Ex{"id": id, "owner_id": ownerID}).
		Returning(goqu.L(resourceColumns)).
		ToSQL()
}

func (r *ResourceRepository) Update(ctx context.Context, id, ownerID string, patch entity.ResourcePatch) (*entity.Resource, error) {
	query, args, err := buildPatch(id, ownerID, patch)
	if err != nil {
		return nil, apperror.Internal("build resource update", err)
	}
	res, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

func (r *ResourceRepository) Delete(ctx context.Context, id, ownerID string) error {
	query, args, err := dialect.Delete("resources").
		Prepared(true).
		Where(goqu.Ex{"id": id, "owner_id": ownerID}).
		ToSQL()
	if err != nil {
		return apperror.Internal("build resource delete", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return notFound(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(resourceNotFoundMessage)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern using the
// default backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func buildSearch(q entity.SearchQuery) (string, []interface{}, error) {
	ds := dialect.From("resources").Prepared(true).Select(goqu.L(resourceColumns))
	if q.Text != "" {
		pattern := "%" + escapeLike(q.Text) + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("name").ILike(pattern),
			goqu.I("type").ILike(pattern),
		))
	}
	if q.Origin != nil {
		ds = ds.Where(goqu.L(
			"ST_DWithin(location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?, false)",
			q.Origin.Lng, q.Origin.Lat, q.Radius*searchSlack,
		))
		return ds.ToSQL()
	}
	return newestFirst(ds, q.Limit).ToSQL()
}

func (r *ResourceRepository) Search(ctx context.Context, q entity.SearchQuery) ([]*entity.Resource, error) {
	query, args, err := buildSearch(q)
	if err != nil {
		return nil, apperror.Internal("build resource search", err)
	}
	return r.queryAll(ctx, query, args, classifySearch)
}

func (r *ResourceRepository) AddRating(ctx context.Context, id string, rt entity.Rating) (*entity.Resource, error) {
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now().UTC()
	}
	res, err := scanResource(r.pool.QueryRow(ctx, addRatingSQL, id, rt.UserID, rt.Score, rt.Comment, rt.CreatedAt))
	if err == nil {
		return res, nil
	}
	if !apperror.IsKind(notFound(err), apperror.KindNotFound) {
		return nil, notFound(err)
	}

	// Nothing updated: either the row is missing or this rater is already in it.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM resources WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, notFound(err)
	}
	if !exists {
		return nil, apperror.NotFound(resourceNotFoundMessage)
	}
	return nil, apperror.AlreadyRated()
}

var _ repository.ResourceRepository = (*ResourceRepository)(nil)
