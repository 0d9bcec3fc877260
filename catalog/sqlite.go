package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stormcast-io/wxgrid/internal/obslog"
	"github.com/stormcast-io/wxgrid/projection"
	"github.com/stormcast-io/wxgrid/wxerr"
)

// sqliteRow is the flat row shape stored in the `catalog_entries` table;
// sqlx maps it onto Entry's wider, nested representation.
type sqliteRow struct {
	Model         string    `db:"model"`
	Parameter     string    `db:"parameter"`
	Level         string    `db:"level"`
	ReferenceTime time.Time `db:"reference_time"`
	ForecastHour  int       `db:"forecast_hour"`

	StorePath string  `db:"store_path"`
	MinLon    float64 `db:"min_lon"`
	MinLat    float64 `db:"min_lat"`
	MaxLon    float64 `db:"max_lon"`
	MaxLat    float64 `db:"max_lat"`
	Height    int     `db:"height"`
	Width     int     `db:"width"`
	ChunkH    int     `db:"chunk_h"`
	ChunkW    int     `db:"chunk_w"`
	ValidTime time.Time `db:"valid_time"`
	Units     string  `db:"units"`
	NativeCRS string  `db:"native_crs"`

	// MissingSentinels is a comma-joined float list; sqlite has no native
	// array column type, so it round-trips through text like the teacher's
	// other flattened-row tables do.
	MissingSentinels string `db:"missing_sentinels"`
}

func encodeSentinels(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func decodeSentinels(s string) []float64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r sqliteRow) toEntry() Entry {
	return Entry{
		Model:         r.Model,
		Parameter:     r.Parameter,
		Level:         r.Level,
		ReferenceTime: r.ReferenceTime,
		ForecastHour:  r.ForecastHour,
		StorePath:     r.StorePath,
		BBox: projection.BBox{
			MinLon: r.MinLon, MinLat: r.MinLat,
			MaxLon: r.MaxLon, MaxLat: r.MaxLat,
		},
		Shape:            [2]int{r.Height, r.Width},
		ChunkShape:       [2]int{r.ChunkH, r.ChunkW},
		ValidTime:        r.ValidTime,
		Units:            r.Units,
		NativeCRS:        r.NativeCRS,
		MissingSentinels: decodeSentinels(r.MissingSentinels),
	}
}

// Schema is the DDL for catalog_entries; callers run it once against a
// fresh database (ingestion owns writes, this package only reads).
const Schema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	model          TEXT NOT NULL,
	parameter      TEXT NOT NULL,
	level          TEXT NOT NULL,
	reference_time DATETIME NOT NULL,
	forecast_hour  INTEGER NOT NULL,
	store_path     TEXT NOT NULL,
	min_lon        REAL NOT NULL,
	min_lat        REAL NOT NULL,
	max_lon        REAL NOT NULL,
	max_lat        REAL NOT NULL,
	height         INTEGER NOT NULL,
	width          INTEGER NOT NULL,
	chunk_h        INTEGER NOT NULL,
	chunk_w        INTEGER NOT NULL,
	valid_time     DATETIME NOT NULL,
	units          TEXT NOT NULL,
	native_crs     TEXT NOT NULL,
	missing_sentinels TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (model, parameter, level, reference_time, forecast_hour)
);
`

// SQLite is a Catalog backed by a sqlite3 database via jmoiron/sqlx,
// naming the library by its conventional Select/Get query style since no
// in-pack file exercises it directly.
type SQLite struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if absent) a sqlite3-backed catalog at dsn
// and ensures its schema exists.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, wxerr.Wrap(wxerr.UpstreamIO, "open catalog database", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, wxerr.Wrap(wxerr.UpstreamIO, "create catalog schema", err)
	}
	return &SQLite{db: db}, nil
}

// SetLogger installs l as the catalog's structured logger; passing nil
// reverts to the discard default.
func (s *SQLite) SetLogger(l *slog.Logger) { s.logger = l }

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ListModels(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out, `SELECT DISTINCT model FROM catalog_entries ORDER BY model`)
	return out, wrapIO(err)
}

func (s *SQLite) ListParameters(ctx context.Context, model string) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out,
		`SELECT DISTINCT parameter FROM catalog_entries WHERE model = ? ORDER BY parameter`, model)
	return out, wrapIO(err)
}

func (s *SQLite) GetAvailableLevels(ctx context.Context, model, parameter string) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out,
		`SELECT DISTINCT level FROM catalog_entries WHERE model = ? AND parameter = ? ORDER BY level`,
		model, parameter)
	return out, wrapIO(err)
}

func (s *SQLite) GetAvailableTimes(ctx context.Context, model, parameter string) ([]TimeKey, error) {
	type row struct {
		ReferenceTime time.Time `db:"reference_time"`
		ForecastHour  int       `db:"forecast_hour"`
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT DISTINCT reference_time, forecast_hour FROM catalog_entries
		 WHERE model = ? AND parameter = ?
		 ORDER BY reference_time, forecast_hour`, model, parameter)
	if err != nil {
		return nil, wrapIO(err)
	}
	out := make([]TimeKey, len(rows))
	for i, r := range rows {
		out[i] = TimeKey{ReferenceTime: r.ReferenceTime, ForecastHour: r.ForecastHour}
	}
	return out, nil
}

func (s *SQLite) Lookup(ctx context.Context, model, parameter, level string, referenceTime time.Time, forecastHour int) (Entry, error) {
	var r sqliteRow
	err := s.db.GetContext(ctx, &r,
		`SELECT * FROM catalog_entries
		 WHERE model = ? AND parameter = ? AND level = ? AND reference_time = ? AND forecast_hour = ?`,
		model, parameter, level, referenceTime, forecastHour)
	if err == sql.ErrNoRows {
		obslog.Or(s.logger).Debug("catalog lookup miss", "model", model, "parameter", parameter, "level", level)
		return Entry{}, wxerr.New(wxerr.NotFound, "no catalog entry for the requested model/parameter/level/time")
	}
	if err != nil {
		obslog.Or(s.logger).Warn("catalog lookup failed", "model", model, "parameter", parameter, "level", level, "err", err)
		return Entry{}, wrapIO(err)
	}
	return r.toEntry(), nil
}

func (s *SQLite) GetBBox(ctx context.Context, model string) (projection.BBox, error) {
	var r struct {
		MinLon sql.NullFloat64 `db:"min_lon"`
		MinLat sql.NullFloat64 `db:"min_lat"`
		MaxLon sql.NullFloat64 `db:"max_lon"`
		MaxLat sql.NullFloat64 `db:"max_lat"`
	}
	err := s.db.GetContext(ctx, &r,
		`SELECT MIN(min_lon) min_lon, MIN(min_lat) min_lat, MAX(max_lon) max_lon, MAX(max_lat) max_lat
		 FROM catalog_entries WHERE model = ?`, model)
	if err != nil {
		return projection.BBox{}, wrapIO(err)
	}
	if !r.MinLon.Valid {
		return projection.BBox{}, wxerr.New(wxerr.NotFound, "no catalog entries for model")
	}
	return projection.BBox{
		MinLon: r.MinLon.Float64, MinLat: r.MinLat.Float64,
		MaxLon: r.MaxLon.Float64, MaxLat: r.MaxLat.Float64,
	}, nil
}

func (s *SQLite) GetTemporalExtent(ctx context.Context, model string) (earliest, latest time.Time, err error) {
	var r struct {
		Earliest sql.NullTime `db:"earliest"`
		Latest   sql.NullTime `db:"latest"`
	}
	qErr := s.db.GetContext(ctx, &r,
		`SELECT MIN(reference_time) earliest, MAX(reference_time) latest
		 FROM catalog_entries WHERE model = ?`, model)
	if qErr != nil {
		return time.Time{}, time.Time{}, wrapIO(qErr)
	}
	if !r.Earliest.Valid {
		return time.Time{}, time.Time{}, wxerr.New(wxerr.NotFound, "no catalog entries for model")
	}
	return r.Earliest.Time, r.Latest.Time, nil
}

func (s *SQLite) Latest(ctx context.Context, model, parameter, level string) (Entry, error) {
	var r sqliteRow
	err := s.db.GetContext(ctx, &r,
		`SELECT * FROM catalog_entries
		 WHERE model = ? AND parameter = ? AND level = ?
		 ORDER BY reference_time DESC, forecast_hour DESC LIMIT 1`,
		model, parameter, level)
	if err == sql.ErrNoRows {
		return Entry{}, wxerr.New(wxerr.NotFound, "no catalog entries for model/parameter/level")
	}
	if err != nil {
		return Entry{}, wrapIO(err)
	}
	return r.toEntry(), nil
}

func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return wxerr.Wrap(wxerr.UpstreamIO, "catalog query", err)
}

// Put inserts or replaces one catalog entry, modeling spec.md §3's
// atomic-rename replacement as an upsert.
func (s *SQLite) Put(ctx context.Context, e Entry) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO catalog_entries
			(model, parameter, level, reference_time, forecast_hour, store_path,
			 min_lon, min_lat, max_lon, max_lat, height, width, chunk_h, chunk_w,
			 valid_time, units, native_crs, missing_sentinels)
		VALUES
			(:model, :parameter, :level, :reference_time, :forecast_hour, :store_path,
			 :min_lon, :min_lat, :max_lon, :max_lat, :height, :width, :chunk_h, :chunk_w,
			 :valid_time, :units, :native_crs, :missing_sentinels)
		ON CONFLICT (model, parameter, level, reference_time, forecast_hour) DO UPDATE SET
			store_path = excluded.store_path,
			min_lon = excluded.min_lon, min_lat = excluded.min_lat,
			max_lon = excluded.max_lon, max_lat = excluded.max_lat,
			height = excluded.height, width = excluded.width,
			chunk_h = excluded.chunk_h, chunk_w = excluded.chunk_w,
			valid_time = excluded.valid_time, units = excluded.units, native_crs = excluded.native_crs,
			missing_sentinels = excluded.missing_sentinels
	`, entryToRow(e))
	if err != nil {
		return wrapIO(err)
	}
	return nil
}

func entryToRow(e Entry) sqliteRow {
	return sqliteRow{
		Model: e.Model, Parameter: e.Parameter, Level: e.Level,
		ReferenceTime: e.ReferenceTime, ForecastHour: e.ForecastHour,
		StorePath: e.StorePath,
		MinLon:    e.BBox.MinLon, MinLat: e.BBox.MinLat,
		MaxLon: e.BBox.MaxLon, MaxLat: e.BBox.MaxLat,
		Height: e.Shape[0], Width: e.Shape[1],
		ChunkH: e.ChunkShape[0], ChunkW: e.ChunkShape[1],
		ValidTime: e.ValidTime, Units: e.Units, NativeCRS: e.NativeCRS,
		MissingSentinels: encodeSentinels(e.MissingSentinels),
	}
}
