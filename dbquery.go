// Package dbquery, SQLite, MySQL ve PostgreSQL üzerinde aynı akıcı arayüzle
// sorgu kurmayı ve çalıştırmayı sağlayan bir kütüphanedir.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package dbquery

import (
	"context"
	"log/slog"
	"time"

	"github.com/biyonik/go-dbquery/backend"
	"github.com/biyonik/go-dbquery/dialect"
)

// Version, go-dbquery kütüphanesinin mevcut sürümünü belirtir.
const Version = "0.2.0"

// DB, bir backend'i, builder fabrikasını ve transaction koordinatörünü tek bir
// yüzeyde birleştirir.
//
// Her DB tek bir fiziksel bağlantıya sahiptir ve concurrent-safe değildir.
// Eş zamanlı iş yükleri için her goroutine kendi DB örneğini açmalıdır.
type DB struct {
	backend backend.Backend
	tx      *TransactionManager

	logger        *slog.Logger
	scanner       Scanner
	debug         bool
	slowThreshold time.Duration
}

// Open, yapılandırmadaki driver etiketini çözer, uygun backend'i kurar ve bağlanır.
//
// Örnek:
//
//	db, err := dbquery.Open(ctx, dbquery.Config{Driver: "sqlite", Database: "app.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
func Open(ctx context.Context, cfg Config, opts ...Option) (*DB, error) {
	d := newDB(opts)

	b, err := cfg.NewBackend(d.backendOptions()...)
	if err != nil {
		return nil, err
	}
	if err := b.Connect(ctx); err != nil {
		return nil, err
	}

	d.attach(b)
	d.logger.Debug("database opened", "driver", b.Dialect().Name)
	return d, nil
}

// New, hazır bir backend'i sarar. Bağlantı çağıranın sorumluluğundadır.
func New(b backend.Backend, opts ...Option) *DB {
	d := newDB(opts)
	d.attach(b)
	return d
}

func newDB(opts []Option) *DB {
	d := &DB{logger: slog.New(slog.DiscardHandler)}
	applyOptions(d, opts)
	return d
}

func (d *DB) attach(b backend.Backend) {
	d.backend = b
	d.tx = NewTransactionManager(b, d.logger)
}

// Table, belirtilen tablo üzerinde yeni bir Builder başlatır.
// Her sorgu için yeni bir builder kullanılmalıdır.
func (d *DB) Table(name string) *Builder {
	b := NewBuilder(d.backend)
	b.logger = d.logger
	if d.scanner != nil {
		b.scanner = d.scanner
	}
	return b.Table(name)
}

// Raw, ham bir SELECT sorgusunu evrensel "?" işaretinden backend'in yerel
// işaretine çevirerek çalıştırır.
//
//	rows, err := db.Raw(ctx, "SELECT * FROM users WHERE name = ? AND bio LIKE 'What?'", "Ayşe")
func (d *DB) Raw(ctx context.Context, query string, args ...any) ([]Row, error) {
	return d.backend.FetchAll(ctx, d.translate(query), args)
}

// RawExecute, sonuç satırı döndürmeyen ham bir ifadeyi çevirerek çalıştırır.
func (d *DB) RawExecute(ctx context.Context, query string, args ...any) (bool, error) {
	return d.backend.Execute(ctx, d.translate(query), args)
}

func (d *DB) translate(query string) string {
	return dialect.Translate(query, d.backend.Placeholder())
}

// LastInsertID, bu bağlantıda en son eklenen satırın kimliğini döndürür.
func (d *DB) LastInsertID(ctx context.Context) (int64, error) {
	return d.backend.LastInsertID(ctx)
}

// BeginTransaction, mantıksal bir transaction başlatır. İç içe çağrılar tek
// fiziksel transaction'da birleşir.
func (d *DB) BeginTransaction(ctx context.Context) error {
	return d.tx.Begin(ctx)
}

// Commit, en içteki mantıksal transaction'ı onaylar.
func (d *DB) Commit(ctx context.Context) error {
	return d.tx.Commit(ctx)
}

// Rollback, fiziksel transaction'ı tamamen geri alır.
func (d *DB) Rollback(ctx context.Context) error {
	return d.tx.Rollback(ctx)
}

// Transaction, fn'i transaction kapsamında çalıştırır. fn hata dönerse veya
// panic ederse rollback yapılır ve aynı hata çağırana döner.
//
//	err := db.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := db.Table("accounts").Where("id", 1).UpdateContext(ctx, debit); err != nil {
//	        return err
//	    }
//	    _, err := db.Table("accounts").Where("id", 2).UpdateContext(ctx, credit)
//	    return err
//	})
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.tx.Run(ctx, fn)
}

// Transactions, transaction koordinatörünü döndürür.
func (d *DB) Transactions() *TransactionManager {
	return d.tx
}

// Backend, alttaki backend'i döndürür.
func (d *DB) Backend() backend.Backend {
	return d.backend
}

// Logger, DB'nin kullandığı logger'ı döndürür.
func (d *DB) Logger() *slog.Logger {
	return d.logger
}

// Disconnect, açık transaction'ı geri alır ve bağlantıyı kapatır.
func (d *DB) Disconnect(ctx context.Context) error {
	return d.backend.Disconnect(ctx)
}

// Close, defer ile kullanım için Disconnect kısayoludur.
func (d *DB) Close() error {
	return d.Disconnect(context.Background())
}
