// README: Catalog store backed by PostgreSQL. Identical concurrent lookups share one query.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

const (
	articleLimit = 10

	// sharedQueryTimeout bounds a lookup that no single caller owns.
	sharedQueryTimeout = 5 * time.Second
)

type collection struct {
	kind        Kind
	table       string
	categoryCol string
	durationCol string
	lodging     bool
}

var collections = map[Kind]collection{
	KindLodging:    {kind: KindLodging, table: "lodgings", categoryCol: "t.accommodation_type", durationCol: "NULL::numeric", lodging: true},
	KindRestaurant: {kind: KindRestaurant, table: "restaurants", categoryCol: "t.category", durationCol: "NULL::numeric"},
	KindTour:       {kind: KindTour, table: "tours", categoryCol: "t.category", durationCol: "t.duration_hours"},
	KindVehicle:    {kind: KindVehicle, table: "vehicles", categoryCol: "t.category", durationCol: "NULL::numeric"},
}

type Store struct {
	db    *pgxpool.Pool
	group singleflight.Group
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) QueryLodging(ctx context.Context, f Filters) ([]Record, error) {
	return s.query(ctx, KindLodging, f)
}

func (s *Store) QueryRestaurants(ctx context.Context, f Filters) ([]Record, error) {
	return s.query(ctx, KindRestaurant, f)
}

func (s *Store) QueryTours(ctx context.Context, f Filters) ([]Record, error) {
	return s.query(ctx, KindTour, f)
}

func (s *Store) QueryVehicles(ctx context.Context, f Filters) ([]Record, error) {
	return s.query(ctx, KindVehicle, f)
}

// query collapses identical in-flight lookups (the featured fallback is the
// common case) and hands every caller its own slice.
func (s *Store) query(ctx context.Context, kind Kind, f Filters) ([]Record, error) {
	c, ok := collections[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	key := fmt.Sprintf("%s:%+v", kind, f)
	return s.shared(ctx, key, func(qctx context.Context) ([]Record, error) {
		return s.run(qctx, c, f)
	})
}

// shared runs fn once per key for all concurrent callers. The lookup is
// detached from the caller that started it, so one cancelled request does not
// fail the others; each caller still stops waiting when its own ctx ends.
func (s *Store) shared(ctx context.Context, key string, fn func(context.Context) ([]Record, error)) ([]Record, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()
		return fn(qctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]Record(nil), res.Val.([]Record)...), nil
	}
}

func (s *Store) run(ctx context.Context, c collection, f Filters) ([]Record, error) {
	sql, args := buildQuery(c, f)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Kind: c.kind}
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Slug, &r.ShortDesc, &r.Content, &r.Address, &r.Gallery,
			&r.Category, &r.Location, &r.Price, &r.SalePrice, &r.Rating, &r.DurationHours, &r.IsFeatured,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// predicates accumulates AND-ed conditions, numbering "?" placeholders as it goes.
type predicates struct {
	conds []string
	args  []any
}

func (p *predicates) add(cond string, args ...any) {
	for _, a := range args {
		p.args = append(p.args, a)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(p.args)), 1)
	}
	p.conds = append(p.conds, cond)
}

func buildQuery(c collection, f Filters) (string, []any) {
	var p predicates
	p.add("t.status = 'publish'")
	if f.Location != "" {
		if zone := NormalizeZone(f.Location); zone != "" {
			p.add("(l.name ILIKE ? OR t.zone = ?)", "%"+f.Location+"%", zone)
		} else {
			p.add("l.name ILIKE ?", "%"+f.Location+"%")
		}
	}
	if f.MaxPrice > 0 {
		p.add("(t.price <= ? OR t.sale_price <= ?)", f.MaxPrice, f.MaxPrice)
	}
	if f.MinPrice > 0 {
		p.add("t.price >= ?", f.MinPrice)
	}
	if f.MinRating > 0 {
		p.add("t.review_score >= ?", f.MinRating)
	}
	if f.Category != "" {
		p.add(c.categoryCol+" ILIKE ?", "%"+f.Category+"%")
	}
	if f.IsFeatured {
		p.add("t.is_featured")
	}
	if c.lodging {
		if f.AccommodationType != "" {
			p.add("t.accommodation_type = ?", f.AccommodationType)
		}
		if f.GroupType != "" {
			p.add("? = ANY(t.group_types)", f.GroupType)
		}
		if f.HasPool {
			p.add("t.has_pool")
		}
	}
	if c.kind == KindTour {
		if f.MinDurationHours > 0 {
			p.add("t.duration_hours >= ?", f.MinDurationHours)
		}
		if f.MaxDurationHours > 0 {
			p.add("t.duration_hours <= ?", f.MaxDurationHours)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `
        SELECT t.id, t.title, COALESCE(t.slug, ''), COALESCE(t.short_desc, ''), COALESCE(t.content, ''),
               COALESCE(t.address, ''), COALESCE(t.gallery, ''), COALESCE(%s, ''), COALESCE(l.name, ''),
               t.price, t.sale_price, t.review_score, %s, t.is_featured
        FROM %s t
        LEFT JOIN locations l ON l.id = t.location_id
        WHERE %s
        ORDER BY t.is_featured DESC, t.id DESC`,
		c.categoryCol, c.durationCol, c.table, strings.Join(p.conds, " AND "))
	if f.Limit > 0 {
		p.args = append(p.args, f.Limit)
		fmt.Fprintf(&sb, "\n        LIMIT $%d", len(p.args))
	}
	return sb.String(), p.args
}

// QueryLocationInfo returns nil without error when no published location matches.
func (s *Store) QueryLocationInfo(ctx context.Context, name string) (*Record, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, COALESCE(slug, ''), COALESCE(content, ''), COALESCE(gallery, '')
        FROM locations
        WHERE name ILIKE $1 AND status = 'publish'
        ORDER BY id
        LIMIT 1`, "%"+name+"%",
	)
	r := Record{Kind: KindLocation}
	if err := row.Scan(&r.ID, &r.Title, &r.Slug, &r.Content, &r.Gallery); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query location: %w", err)
	}
	r.Location = r.Title
	return &r, nil
}

func (s *Store) SearchArticles(ctx context.Context, keyword string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, title, COALESCE(slug, ''), COALESCE(content, ''), COALESCE(gallery, '')
        FROM articles
        WHERE status = 'publish' AND (title ILIKE $1 OR content ILIKE $1)
        ORDER BY created_at DESC
        LIMIT $2`, "%"+keyword+"%", articleLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Kind: KindArticle}
		if err := rows.Scan(&r.ID, &r.Title, &r.Slug, &r.Content, &r.Gallery); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
