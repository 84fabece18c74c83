package dbquery

import (
	"log/slog"
	"time"

	"github.com/biyonik/go-dbquery/backend"
)

// -----------------------------------------------------------------------------
//  Bu dosya; dbquery facade'ının yapılandırma katmanını oluşturan Option
//  mimarisini içerir. Her With* fonksiyonu DB kurulumuna eklenen küçük bir
//  dokunuştur:
//
//    db, err := dbquery.Open(ctx, cfg,
//        dbquery.WithLogger(logger),
//        dbquery.WithDebug(true),
//    )
//
//  Open backend'i kendisi oluşturduğu için logger, debug ve yavaş sorgu eşiği
//  backend'e de aktarılır. New ile hazır bir backend sarıldığında bu ayarlar
//  yalnızca facade ve builder katmanını etkiler.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// Option, bir *DB örneği üzerinde çalışan yapılandırma fonksiyonlarının
// temel imzasıdır.
type Option func(*DB)

// WithLogger, tanı kayıtlarının yazılacağı logger'ı ayarlar.
// Varsayılan logger tüm kayıtları yutar. Hatalar her durumda çağırana döner.
//
// Örnek:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	db := dbquery.New(b, dbquery.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(d *DB) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDebug açıkken backend çalıştırdığı her ifadeyi Debug seviyesinde loglar.
func WithDebug(enabled bool) Option {
	return func(d *DB) {
		d.debug = enabled
	}
}

// WithSlowThreshold, bu süreyi aşan ifadelerin Warn seviyesinde loglanmasını sağlar.
// Negatif değer yavaş sorgu tespitini kapatır.
func WithSlowThreshold(threshold time.Duration) Option {
	return func(d *DB) {
		d.slowThreshold = threshold
	}
}

// WithScanner, GetInto ve FirstInto tarafından kullanılan satır bağlayıcısını değiştirir.
func WithScanner(s Scanner) Option {
	return func(d *DB) {
		d.scanner = s
	}
}

// applyOptions, verilen Option'ları sırayla DB üzerine uygular.
func applyOptions(d *DB, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
}

// backendOptions, facade ayarlarını Open'ın oluşturduğu backend'e taşır.
func (d *DB) backendOptions() []backend.Option {
	opts := []backend.Option{
		backend.WithLogger(d.logger),
		backend.WithDebug(d.debug),
	}
	if d.slowThreshold != 0 {
		opts = append(opts, backend.WithSlowThreshold(d.slowThreshold))
	}
	return opts
}
