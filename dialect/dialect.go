// Package dialect, desteklenen veritabanı aileleri (SQLite, MySQL, PostgreSQL)
// için değişmez backend tanımlayıcılarını, parametre yer tutucu stillerini ve
// sorgu oluşturucunun biriktirdiği cümle tiplerini içerir.
//
// Bu paket hiçbir sürücüye bağımlı değildir; sürücü seçimi backend paketinde,
// SQL derlemesi ise ana pakette yapılır.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package dialect

import (
	"strconv"
	"strings"
)

// ----------------------------------------------------------------------------
// Placeholder
// ----------------------------------------------------------------------------

// Placeholder is a native parameter marker style.
type Placeholder string

const (
	// Question is the universal marker; SQLite and MySQL drivers consume it directly.
	Question Placeholder = "?"
	// Format is the printf-style marker used by %s-style client libraries.
	Format Placeholder = "%s"
	// Dollar is the PostgreSQL positional marker ($1, $2, ...).
	Dollar Placeholder = "$"
)

// Universal is the marker callers always write.
const Universal = "?"

// Token returns the marker for the n-th (1-based) parameter.
func (p Placeholder) Token(n int) string {
	switch p {
	case Dollar:
		return "$" + strconv.Itoa(n)
	case "":
		return Universal
	default:
		return string(p)
	}
}

// String returns the marker as written in a statement. For Dollar the
// positional form "$n" is reported.
func (p Placeholder) String() string {
	if p == Dollar {
		return "$n"
	}
	return p.Token(1)
}

// IsUniversal reports whether translation is the identity for this style.
func (p Placeholder) IsUniversal() bool {
	return p == Question || p == ""
}

// ----------------------------------------------------------------------------
// Dialect (Backend Descriptor)
// ----------------------------------------------------------------------------

// Dialect is the immutable descriptor of one backend family.
type Dialect struct {
	Name        string      // family name: sqlite | mysql | postgresql
	DriverName  string      // database/sql driver name
	Placeholder Placeholder // native parameter marker
	OpenQuote   byte        // identifier quote, opening
	CloseQuote  byte        // identifier quote, closing
}

// Family names recognized by the facade.
const (
	NameSQLite     = "sqlite"
	NameMySQL      = "mysql"
	NamePostgreSQL = "postgresql"
)

var (
	// SQLite describes the SQLite family (modernc.org/sqlite).
	SQLite = Dialect{
		Name:        NameSQLite,
		DriverName:  "sqlite",
		Placeholder: Question,
		OpenQuote:   '"',
		CloseQuote:  '"',
	}

	// MySQL describes the MySQL / MariaDB family (github.com/go-sql-driver/mysql).
	MySQL = Dialect{
		Name:        NameMySQL,
		DriverName:  "mysql",
		Placeholder: Question,
		OpenQuote:   '`',
		CloseQuote:  '`',
	}

	// PostgreSQL describes the PostgreSQL family (github.com/lib/pq).
	PostgreSQL = Dialect{
		Name:        NamePostgreSQL,
		DriverName:  "postgres",
		Placeholder: Dollar,
		OpenQuote:   '"',
		CloseQuote:  '"',
	}
)

// Lookup resolves a driver tag, accepting the common aliases.
func Lookup(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite, true
	case "mysql", "mariadb":
		return MySQL, true
	case "postgresql", "postgres", "pgsql", "pg":
		return PostgreSQL, true
	default:
		return Dialect{}, false
	}
}

// Quote wraps an identifier with the family's quote pair. Each dot-separated
// part is quoted on its own and embedded closing quotes are doubled.
//
// Örnek:
//
//	MySQL:      "users.id" → "`users`.`id`"
//	PostgreSQL: "users"    → `"users"`
func (d Dialect) Quote(identifier string) string {
	if identifier == "*" {
		return identifier
	}
	parts := strings.Split(identifier, ".")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		closing := string(d.CloseQuote)
		parts[i] = string(d.OpenQuote) + strings.ReplaceAll(part, closing, closing+closing) + closing
	}
	return strings.Join(parts, ".")
}

// Translate rewrites the universal markers of query into this family's
// native markers.
func (d Dialect) Translate(query string) string {
	return Translate(query, d.Placeholder)
}

// ----------------------------------------------------------------------------
// WHERE / HAVING
// ----------------------------------------------------------------------------

// Predicate is one WHERE or HAVING condition.
//
// When Operator is empty the predicate is a pre-rendered fragment (IN, NULL,
// BETWEEN ...) whose text lives in Column and whose values are in Values.
// Otherwise it renders as "<Column> <Operator> ?" bound to Values[0].
type Predicate struct {
	Column   string
	Operator string
	Values   []any
}

// IsFragment reports whether the predicate is pre-rendered.
func (p Predicate) IsFragment() bool {
	return p.Operator == ""
}

// ----------------------------------------------------------------------------
// ORDER BY
// ----------------------------------------------------------------------------

// OrderDirection, sıralama yönünü belirtir.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// IsValid, yönün geçerli olup olmadığını kontrol eder.
func (d OrderDirection) IsValid() bool {
	return d == OrderAsc || d == OrderDesc
}

// OrderClause, ORDER BY ifadesini temsil eder.
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// ----------------------------------------------------------------------------
// JOIN
// ----------------------------------------------------------------------------

// JoinType, JOIN türünü belirtir.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinCross JoinType = "cross"
)

// Keyword returns the SQL keyword introducing the join.
func (t JoinType) Keyword() string {
	switch t {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinCross:
		return "CROSS JOIN"
	default:
		return "JOIN"
	}
}

// JoinClause, JOIN ifadesini temsil eder.
type JoinClause struct {
	Type     JoinType
	Table    string
	First    string // Sol ifade
	Operator string // Genellikle "="
	Second   string // Sağ ifade
}
