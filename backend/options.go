package backend

import (
	"log/slog"
	"time"
)

// Option, bir adaptörün çekirdeğini yapılandıran fonksiyon imzasıdır.
type Option func(*core)

// WithLogger, hata ve yavaş sorgu kayıtlarının yazılacağı logger'ı ayarlar.
// Varsayılan logger tüm kayıtları yutar.
func WithLogger(logger *slog.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug açıkken her ifade Debug seviyesinde loglanır.
func WithDebug(enabled bool) Option {
	return func(c *core) {
		c.debug = enabled
	}
}

// WithSlowThreshold, bu süreyi aşan ifadeleri Warn seviyesinde loglar.
// Sıfır veya negatif değer yavaş sorgu tespitini kapatır.
// Varsayılan 100ms.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *core) {
		c.slowThreshold = d
	}
}
