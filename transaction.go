package dbquery

import (
	"context"
	"log/slog"

	"github.com/biyonik/go-dbquery/backend"
)

// -----------------------------------------------------------------------------
//  TransactionManager: Mantıksal Transaction Kapsamları
//
//  Bu dosya, bir fonksiyonu transaction kapsamında çalıştıran koordinatörü
//  içerir. Koordinatörün kendisi iç içe geçmeyi takip etmez; her mantıksal
//  kapsam backend üzerinde Begin/Commit çağırır ve backend'in seviye sayacı
//  bunları tek bir fiziksel transaction'a indirger:
//
//    db.Transaction(ctx, func(ctx context.Context) error {   // BEGIN (0→1)
//        ...
//        return db.Transaction(ctx, func(ctx context.Context) error { // (1→2)
//            ...
//        })                                                  // (2→1)
//    })                                                      // COMMIT (1→0)
//
//  Kapsam içinde hata dönerse veya panic oluşursa rollback yapılır ve orijinal
//  hata (veya panic) çağırana aynen iletilir. Rollback hatası yalnızca loglanır.
//
//  İçteki bir rollback fiziksel transaction'ın tamamını geri alır; savepoint
//  desteği yoktur.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// TransactionManager, backend transaction primitive'lerini kapsam bazlı
// kullanıma açar. Concurrent-safe değildir.
type TransactionManager struct {
	backend backend.Backend
	logger  *slog.Logger
}

// NewTransactionManager, verilen backend için yeni bir koordinatör oluşturur.
func NewTransactionManager(b backend.Backend, logger *slog.Logger) *TransactionManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TransactionManager{backend: b, logger: logger}
}

// Run, fn'i bir mantıksal transaction içinde çalıştırır.
//
// fn nil dönerse Commit; hata dönerse Rollback yapılır ve fn'in hatası döner.
// Commit başarısız olursa Rollback denenir ve commit hatası döner.
// fn panic ederse Rollback yapılır ve panic yeniden fırlatılır.
func (m *TransactionManager) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := m.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			m.rollback(ctx, "panic")
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		m.rollback(ctx, "error")
		return err
	}

	if err := m.Commit(ctx); err != nil {
		m.rollback(ctx, "commit failure")
		return err
	}
	return nil
}

// Begin, mantıksal bir transaction başlatır.
func (m *TransactionManager) Begin(ctx context.Context) error {
	return m.backend.BeginTransaction(ctx)
}

// Commit, en içteki mantıksal transaction'ı onaylar.
func (m *TransactionManager) Commit(ctx context.Context) error {
	return m.backend.Commit(ctx)
}

// Rollback, fiziksel transaction'ı geri alır ve seviyeyi sıfırlar.
func (m *TransactionManager) Rollback(ctx context.Context) error {
	return m.backend.Rollback(ctx)
}

// Level, backend'in mevcut iç içe geçme seviyesini döndürür.
func (m *TransactionManager) Level() int {
	return m.backend.TransactionLevel()
}

func (m *TransactionManager) rollback(ctx context.Context, reason string) {
	if err := m.backend.Rollback(ctx); err != nil {
		m.logger.Error("transaction rollback failed", "reason", reason, "error", err)
	}
}
