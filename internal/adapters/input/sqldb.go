// internal/adapters/input/sqldb.go
package input

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
)

// DefaultQuery se usa cuando la configuración no trae consulta.
const DefaultQuery = "SELECT * FROM download_links"

// Querier es la parte de pgxpool.Pool que usa la fuente SQL.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SQLSource carga los enlaces de una consulta PostgreSQL. Cada fila se
// convierte en un LinkRecord con todas sus columnas como atributos;
// linkColumn nombra la columna con la URL.
type SQLSource struct {
	dsn        string
	query      string
	linkColumn string
	logger     logx.Logger

	mu   sync.Mutex
	db   Querier
	pool *pgxpool.Pool
}

// SQLOptions configura la fuente SQL.
type SQLOptions struct {
	DSN        string
	Query      string
	LinkColumn string

	// DB permite inyectar un Querier (tests); si es nil se abre un pgxpool
	// con DSN en la primera carga.
	DB Querier

	Logger logx.Logger
}

// NewSQLSource crea una fuente SQL. La conexión se abre en GetDownloadLinks
// para que un fallo de base de datos aborte el batch por el camino normal.
func NewSQLSource(opts SQLOptions) (*SQLSource, error) {
	if opts.DSN == "" && opts.DB == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "sql_db input requires a dsn")
	}
	if opts.Query == "" {
		opts.Query = DefaultQuery
	}
	if opts.LinkColumn == "" {
		opts.LinkColumn = "link"
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}

	return &SQLSource{
		dsn:        opts.DSN,
		query:      opts.Query,
		linkColumn: opts.LinkColumn,
		db:         opts.DB,
		logger:     opts.Logger.With("component", "sql-input"),
	}, nil
}

func (s *SQLSource) Name() string { return "sql_db" }

// GetDownloadLinks ejecuta la consulta y retorna las filas en orden.
func (s *SQLSource) GetDownloadLinks(ctx context.Context) (string, []*domain.LinkRecord, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return "", nil, err
	}

	rows, err := db.Query(ctx, s.query)
	if err != nil {
		return "", nil, errors.Wrap(errors.Classify(err), "query download links")
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return "", nil, errors.Wrap(errors.Classify(err), "read download links")
	}

	if len(maps) > 0 {
		if _, ok := maps[0][s.linkColumn]; !ok {
			return "", nil, errors.Wrapf(errors.ErrInvalidInput, "column %q not present in query result", s.linkColumn)
		}
	}

	records := make([]*domain.LinkRecord, 0, len(maps))
	for _, m := range maps {
		records = append(records, domain.NewLinkRecord(m, s.linkColumn))
	}

	s.logger.Debug("download links queried", "rows", len(records), "link_column", s.linkColumn)
	return s.linkColumn, records, nil
}

func (s *SQLSource) connect(ctx context.Context) (Querier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	poolCfg, err := pgxpool.ParseConfig(s.dsn)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidInput), "invalid database dsn")
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(errors.Classify(err), "connect to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.Classify(err), "database ping failed")
	}

	s.logger.Info("connected to database", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database)
	s.pool = pool
	s.db = pool
	return pool, nil
}

// Close cierra el pool si lo abrió esta fuente.
func (s *SQLSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
		s.db = nil
	}
	return nil
}

// String describe la fuente sin credenciales.
func (s *SQLSource) String() string {
	return fmt.Sprintf("sql_db(column=%s)", s.linkColumn)
}
