package backend

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/biyonik/go-dbquery/dialect"
)

// executor; hem *sql.Conn hem *sql.Tx yapılarının ortak olarak sağladığı
// fonksiyonları soyutlar. Transaction açıkken tüm ifadeler *sql.Tx üzerinden,
// değilse sabitlenmiş *sql.Conn üzerinden (autocommit) gider.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

var (
	_ executor = (*sql.Conn)(nil)
	_ executor = (*sql.Tx)(nil)
)

// rollbackPolicy, ailelerin rollback sırasındaki iki meşru davranışını ayırır.
type rollbackPolicy int

const (
	// rollbackCollapse: sayaç her durumda 0'a iner, açık transaction varsa geri alınır.
	// SQLite ve MySQL.
	rollbackCollapse rollbackPolicy = iota

	// rollbackIfActive: sayaç 0 iken hiçbir şey yapılmaz; aksi halde geri alınır
	// ve başarılı olsun olmasın sayaç sıfırlanıp autocommit'e dönülür. PostgreSQL.
	rollbackIfActive
)

// family, bir adaptörün çekirdeğe verdiği aileye özgü bilgileri toplar.
type family struct {
	dialect     dialect.Dialect
	dsn         string
	lastIDQuery string
	rollback    rollbackPolicy

	// errorAttrs sürücü hatasından log alanları çıkarır (hata kodu vb.).
	errorAttrs func(err error) []any
}

// core, tüm adaptörlerin paylaştığı database/sql uygulamasıdır.
type core struct {
	family

	db    *sql.DB
	ownDB bool
	conn  *sql.Conn
	tx    *sql.Tx
	level int

	logger        *slog.Logger
	debug         bool
	slowThreshold time.Duration
	stats         QueryStats
}

func newCore(f family, db *sql.DB, opts []Option) *core {
	c := &core{
		family:        f,
		db:            db,
		logger:        slog.New(slog.DiscardHandler),
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Connect havuzu tek bağlantıyla sınırlar ve o bağlantıyı sabitler.
func (c *core) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	if c.db == nil {
		db, err := sql.Open(c.dialect.DriverName, c.dsn)
		if err != nil {
			return c.fail("connect", "", nil, err)
		}
		c.db, c.ownDB = db, true
	}
	c.db.SetMaxOpenConns(1)

	conn, err := c.db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
		if err != nil {
			_ = conn.Close()
		}
	}
	if err != nil {
		c.closeDB()
		return c.fail("connect", "", nil, err)
	}

	c.conn = conn
	c.level = 0
	c.logger.Debug("backend connected", "dialect", c.dialect.Name)
	return nil
}

// Disconnect açık transaction'ı geri alır, bağlantıyı havuza iade eder ve
// havuz bu adaptöre aitse onu da kapatır.
func (c *core) Disconnect(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}

	var errs []error
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		c.tx = nil
	}
	c.level = 0

	if err := c.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	c.conn = nil
	c.closeDB()

	if err := errors.Join(errs...); err != nil {
		return c.fail("disconnect", "", nil, err)
	}
	c.logger.Debug("backend disconnected", "dialect", c.dialect.Name)
	return nil
}

func (c *core) closeDB() {
	if c.ownDB && c.db != nil {
		_ = c.db.Close()
		c.db, c.ownDB = nil, false
	}
}

func (c *core) BeginTransaction(ctx context.Context) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	c.level++
	if c.level > 1 {
		return nil
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		c.level = 0
		return c.fail("begin", "", nil, err)
	}
	c.tx = tx
	return nil
}

func (c *core) Commit(ctx context.Context) error {
	if c.level == 0 {
		return nil
	}

	c.level--
	if c.level > 0 || c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return c.fail("commit", "", nil, err)
	}
	return nil
}

func (c *core) Rollback(ctx context.Context) error {
	if c.rollback == rollbackIfActive && c.level == 0 {
		return nil
	}

	c.level = 0
	if c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return c.fail("rollback", "", nil, err)
	}
	return nil
}

func (c *core) TransactionLevel() int {
	return c.level
}

func (c *core) exec() (executor, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if c.tx != nil {
		return c.tx, nil
	}
	return c.conn, nil
}

func (c *core) Execute(ctx context.Context, query string, args []any) (bool, error) {
	ex, err := c.exec()
	if err != nil {
		return false, err
	}

	start := time.Now()
	_, err = ex.ExecContext(ctx, query, args...)
	c.record(query, args, start, err, false)
	if err != nil {
		return false, c.fail("execute", query, args, err)
	}
	return true, nil
}

func (c *core) ExecuteMany(ctx context.Context, query string, argsList [][]any) (bool, error) {
	if len(argsList) == 0 {
		return true, nil
	}

	ex, err := c.exec()
	if err != nil {
		return false, err
	}

	stmt, err := ex.PrepareContext(ctx, query)
	if err != nil {
		return false, c.fail("prepare", query, nil, err)
	}
	defer stmt.Close()

	for _, args := range argsList {
		start := time.Now()
		_, err := stmt.ExecContext(ctx, args...)
		c.record(query, args, start, err, false)
		if err != nil {
			return false, c.fail("execute many", query, args, err)
		}
	}
	return true, nil
}

func (c *core) FetchAll(ctx context.Context, query string, args []any) ([]Row, error) {
	return c.fetch(ctx, "fetch all", query, args, 0)
}

func (c *core) FetchOne(ctx context.Context, query string, args []any) (Row, error) {
	rows, err := c.fetch(ctx, "fetch one", query, args, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// fetch, en fazla limit satır okur (0 = sınırsız). Cursor her dönüş yolunda kapatılır.
func (c *core) fetch(ctx context.Context, op, query string, args []any, limit int) (result []Row, err error) {
	ex, err := c.exec()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { c.record(query, args, start, err, true) }()

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.fail(op, query, args, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, c.fail(op, query, args, err)
	}

	result = []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, c.fail(op, query, args, err)
		}

		row := make(Row, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		result = append(result, row)

		if limit > 0 && len(result) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, c.fail(op, query, args, err)
	}
	return result, nil
}

func (c *core) LastInsertID(ctx context.Context) (id int64, err error) {
	ex, err := c.exec()
	if err != nil {
		return 0, err
	}

	start := time.Now()
	err = ex.QueryRowContext(ctx, c.lastIDQuery).Scan(&id)
	c.record(c.lastIDQuery, nil, start, err, true)
	if err != nil {
		return 0, c.fail("last insert id", c.lastIDQuery, nil, err)
	}
	return id, nil
}

func (c *core) QuoteIdentifier(name string) string {
	return c.dialect.Quote(name)
}

func (c *core) Placeholder() dialect.Placeholder {
	return c.dialect.Placeholder
}

func (c *core) Dialect() dialect.Dialect {
	return c.dialect
}

// Stats returns the execution counters of this backend.
func (c *core) Stats() *QueryStats {
	return &c.stats
}

// DB returns the underlying pool, or nil before Connect and after Disconnect
// on an owned pool.
//
// Connect caps the pool at one connection and pins it. While connected, any
// statement run directly on the returned pool (Query, Exec, Begin, Conn)
// waits for that connection and blocks until Disconnect. Use it to read
// sql.DBStats only; run statements through Execute and Fetch*.
func (c *core) DB() *sql.DB {
	return c.db
}

func (c *core) record(query string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		c.stats.TotalQueries.Add(1)
	} else {
		c.stats.TotalExecs.Add(1)
	}
	c.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		c.stats.Errors.Add(1)
	}

	if c.slowThreshold > 0 && duration > c.slowThreshold {
		c.stats.SlowQueries.Add(1)
		c.logger.Warn("slow query detected", "dialect", c.dialect.Name, "duration", duration, "query", query, "args", args)
	}
	if c.debug {
		c.logger.Debug("query", "dialect", c.dialect.Name, "duration", duration, "query", query, "args", args)
	}
}

// fail logs err and wraps it into a *QueryError.
func (c *core) fail(op, query string, args []any, err error) error {
	attrs := []any{"dialect", c.dialect.Name, "op", op, "error", err}
	if query != "" {
		attrs = append(attrs, "query", query, "args", args)
	}
	if c.errorAttrs != nil {
		attrs = append(attrs, c.errorAttrs(err)...)
	}
	c.logger.Error("database error", attrs...)

	return &QueryError{Op: op, Query: query, Args: args, Err: err}
}
