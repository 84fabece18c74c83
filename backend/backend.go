// Package backend, sorgu oluşturucunun fiziksel veritabanıyla konuştuğu tek
// dikiş noktasını (Backend Capability) tanımlar.
//
// Her aile (SQLite, MySQL, PostgreSQL) aynı sözleşmeyi uygular: bağlanma,
// tek ifade çalıştırma, aynı ifadeyi birden çok parametre setiyle çalıştırma,
// satır okuma, son eklenen kimlik, tanımlayıcı tırnaklama, yerel placeholder
// ve iç içe geçebilen transaction ilkelleri.
//
// Tüm adaptörler ortak bir database/sql çekirdeği üzerine kuruludur. Çekirdek
// havuzdan tek bir *sql.Conn sabitler; böylece nesting sayacı, son eklenen
// kimlik ve fiziksel transaction hep aynı oturuma aittir.
//
// Bir Backend örneği eş zamanlı kullanım için güvenli değildir. Her goroutine
// kendi örneğini kullanmalıdır.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
package backend

import (
	"context"

	"github.com/biyonik/go-dbquery/dialect"
)

// Row, okunan tek bir satırı kolon adı → değer eşlemesi olarak taşır.
// Sürücüden []byte olarak gelen değerler string'e çevrilir.
type Row = map[string]any

// Backend, çekirdeğin tükettiği yetenek sözleşmesidir.
//
// BeginTransaction/Commit/Rollback mantıksal çağrılardır: fiziksel BEGIN yalnızca
// sayaç 0→1 geçişinde, fiziksel COMMIT yalnızca en dıştaki commit'te gönderilir.
// Rollback sayacı her durumda sıfırlar.
type Backend interface {
	// Connect fiziksel bağlantıyı açar. Zaten bağlıysa hiçbir şey yapmaz.
	Connect(ctx context.Context) error

	// Disconnect açık bir transaction varsa geri alır ve bağlantıyı kapatır.
	Disconnect(ctx context.Context) error

	BeginTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Execute sonuç satırı döndürmeyen tek bir ifadeyi çalıştırır.
	Execute(ctx context.Context, query string, args []any) (bool, error)

	// ExecuteMany aynı ifadeyi her parametre listesi için bir kez çalıştırır.
	// Boş liste başarılı sayılır.
	ExecuteMany(ctx context.Context, query string, argsList [][]any) (bool, error)

	FetchAll(ctx context.Context, query string, args []any) ([]Row, error)

	// FetchOne ilk satırı döndürür; satır yoksa (nil, nil) döner.
	FetchOne(ctx context.Context, query string, args []any) (Row, error)

	LastInsertID(ctx context.Context) (int64, error)

	QuoteIdentifier(name string) string

	// Placeholder ailenin yerel parametre işaretini döndürür.
	Placeholder() dialect.Placeholder

	Dialect() dialect.Dialect

	// TransactionLevel nesting sayacının güncel değerini döndürür.
	TransactionLevel() int
}
