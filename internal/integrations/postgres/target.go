package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal/kev"
)

const documentColumn = "document"

var errNotConnected = errors.New("postgres target is not connected")

type Option func(*Target)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Target) {
		t.logger = logger
	}
}

// Target stores each record as one jsonb row of <schema>.<table>. The schema
// and table are created on first use.
type Target struct {
	uri    string
	schema string
	table  string
	logger *zap.Logger

	conn *pgx.Conn
}

func NewTarget(uri, schema, table string, opts ...Option) *Target {
	t := &Target{
		uri:    uri,
		schema: schema,
		table:  table,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Target) Name() string {
	return fmt.Sprintf("postgres:%s.%s", t.schema, t.table)
}

func (t *Target) identifier() pgx.Identifier {
	return pgx.Identifier{t.schema, t.table}
}

func (t *Target) Connect(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, t.uri)
	if err != nil {
		return err
	}
	t.conn = conn

	if err := conn.Ping(ctx); err != nil {
		return err
	}

	t.logger.Info("connected to postgres",
		zap.String("schema", t.schema),
		zap.String("table", t.table),
	)
	return nil
}

func (t *Target) Disconnect(ctx context.Context) error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close(ctx)
	t.conn = nil
	return err
}

// Replace clears and refills the table in a single transaction, so a failed
// insert leaves the previous snapshot in place.
func (t *Target) Replace(ctx context.Context, records []kev.Record) (int, error) {
	if t.conn == nil {
		return 0, errNotConnected
	}

	rows, err := Rows(records)
	if err != nil {
		return 0, err
	}

	tx, err := t.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ident := t.identifier().Sanitize()
	ddl := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{t.schema}.Sanitize()),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s jsonb NOT NULL)", ident, documentColumn),
	}
	for _, stmt := range ddl {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("preparing table: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", ident))
	if err != nil {
		return 0, fmt.Errorf("clearing table: %w", err)
	}
	t.logger.Info("cleared old data",
		zap.String("table", ident),
		zap.Int64("deleted", tag.RowsAffected()),
	)

	n, err := tx.CopyFrom(ctx, t.identifier(), []string{documentColumn}, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copying documents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Rows encodes records as single-column COPY rows of JSON.
func Rows(records []kev.Record) ([][]any, error) {
	rows := make([][]any, len(records))
	for i, r := range records {
		bs, err := json.Marshal(r.Document())
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", r.CVEID(), err)
		}
		rows[i] = []any{bs}
	}
	return rows, nil
}
