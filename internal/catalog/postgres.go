package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/geo"
	"github.com/onnwee/stand/internal/tracing"
)

// businessSourcePlace marks rows in businesses imported from a places directory.
const businessSourcePlace = "place"

// Rank list sides stored in rank_list_entries.side.
const (
	sideSupport = "support"
	sideOppose  = "oppose"
)

// PostgresSource loads the catalog from the tables created by
// migrations/000001_catalog.up.sql.
type PostgresSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSource creates a new PostgresSource.
func NewPostgresSource(db *sql.DB, logger *slog.Logger) *PostgresSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSource{
		db:     db,
		logger: logger,
	}
}

// Snapshot reads the whole catalog in one read-only transaction so every
// table is seen at the same point in time.
func (s *PostgresSource) Snapshot(ctx context.Context) (snap *Snapshot, err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("failed to begin catalog transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err == nil {
			s.logger.Warn("failed to close catalog transaction", "error", rbErr)
		}
	}()

	snap = &Snapshot{LoadedAt: time.Now().UTC()}

	if snap.Brands, err = s.loadBrands(ctx, tx); err != nil {
		return nil, err
	}
	if snap.RankLists, err = s.loadRankLists(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Businesses, snap.Places, err = s.loadBusinesses(ctx, tx); err != nil {
		return nil, err
	}

	return snap, nil
}

func (s *PostgresSource) loadBrands(ctx context.Context, tx *sql.Tx) (brands []alignment.Brand, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "brands", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, category, website
		FROM brands
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var b alignment.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Website); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		index[b.ID] = len(brands)
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brands: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT brand_id, value_id, position, is_support
		FROM brand_value_alignments
		ORDER BY brand_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query value alignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var brandID string
		var va alignment.ValueAlignment
		if err := rows.Scan(&brandID, &va.ValueID, &va.Position, &va.IsSupport); err != nil {
			return nil, fmt.Errorf("failed to scan value alignment: %w", err)
		}
		if i, ok := index[brandID]; ok {
			brands[i].ValueAlignments = append(brands[i].ValueAlignments, va)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate value alignments: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT brand_id, address, latitude, longitude, is_primary
		FROM brand_locations
		ORDER BY brand_id, is_primary DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var brandID string
		var loc geo.Location
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&brandID, &loc.Address, &lat, &lng, &loc.Primary); err != nil {
			return nil, fmt.Errorf("failed to scan brand location: %w", err)
		}
		if lat.Valid && lng.Valid {
			loc.Coordinates = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
		}
		if i, ok := index[brandID]; ok {
			brands[i].Locations = append(brands[i].Locations, loc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brand locations: %w", err)
	}

	return brands, nil
}

func (s *PostgresSource) loadRankLists(ctx context.Context, tx *sql.Tx) (lists alignment.RankLists, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "rank_list_entries", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := tx.QueryContext(ctx, `
		SELECT value_id, side, position, entity_key
		FROM rank_list_entries
		ORDER BY value_id, side, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank lists: %w", err)
	}
	defer rows.Close()

	lists = make(alignment.RankLists)
	for rows.Next() {
		var valueID, side, key string
		var pos int
		if err := rows.Scan(&valueID, &side, &pos, &key); err != nil {
			return nil, fmt.Errorf("failed to scan rank list entry: %w", err)
		}
		l := lists[valueID]
		switch side {
		case sideSupport:
			l.Support = appendAt(l.Support, key, pos)
		case sideOppose:
			l.Oppose = appendAt(l.Oppose, key, pos)
		default:
			s.logger.Warn("skipping rank list entry with unknown side",
				"value_id", valueID,
				"side", side)
			continue
		}
		lists[valueID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rank lists: %w", err)
	}

	return lists, nil
}

// appendAt appends key to list, padding with empty slots so that key lands
// at its 1-based position when that position is still in the counted range.
func appendAt(list []string, key string, pos int) []string {
	for len(list) < pos-1 && len(list) < alignment.MaxListPosition {
		list = append(list, "")
	}
	return append(list, key)
}

func (s *PostgresSource) loadBusinesses(ctx context.Context, tx *sql.Tx) (businesses []alignment.Business, places []alignment.PlaceBusiness, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "businesses", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	type row struct {
		source  string
		placeID sql.NullString
		biz     alignment.Business
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, category, website, source, place_id
		FROM businesses
		ORDER BY created_at, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer rows.Close()

	var all []row
	index := make(map[string]int)
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.biz.ID, &r.biz.Name, &r.biz.Category, &r.biz.Website, &r.source, &r.placeID); err != nil {
			return nil, nil, fmt.Errorf("failed to scan business: %w", err)
		}
		index[r.biz.ID] = len(all)
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate businesses: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT business_id, address, latitude, longitude, is_primary
		FROM business_locations
		ORDER BY business_id, is_primary DESC, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query business locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var businessID string
		var loc geo.Location
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&businessID, &loc.Address, &lat, &lng, &loc.Primary); err != nil {
			return nil, nil, fmt.Errorf("failed to scan business location: %w", err)
		}
		if lat.Valid && lng.Valid {
			loc.Coordinates = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
		}
		if i, ok := index[businessID]; ok {
			all[i].biz.Locations = append(all[i].biz.Locations, loc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate business locations: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT business_id, cause_id, name, category, stance
		FROM business_causes
		ORDER BY business_id, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query business causes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var businessID, stance string
		var c alignment.Cause
		if err := rows.Scan(&businessID, &c.ID, &c.Name, &c.Category, &stance); err != nil {
			return nil, nil, fmt.Errorf("failed to scan business cause: %w", err)
		}
		c.Type = alignment.Stance(stance)
		if i, ok := index[businessID]; ok {
			all[i].biz.Causes = append(all[i].biz.Causes, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate business causes: %w", err)
	}

	for _, r := range all {
		if r.source != businessSourcePlace {
			businesses = append(businesses, r.biz)
			continue
		}
		p := alignment.PlaceBusiness{
			Profile: r.biz.Profile,
			PlaceID: r.placeID.String,
			Causes:  r.biz.Causes,
		}
		if len(r.biz.Locations) > 0 {
			p.Address = r.biz.Locations[0].Address
			p.Point = r.biz.Locations[0].Coordinates
		}
		places = append(places, p)
	}

	return businesses, places, nil
}
