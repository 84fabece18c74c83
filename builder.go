package dbquery

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/biyonik/go-dbquery/backend"
	"github.com/biyonik/go-dbquery/dialect"
	"github.com/biyonik/go-dbquery/internal/validation"
)

// Builder, SQL sorgularını akıcı bir arayüz (fluent interface) ile oluşturmak için kullanılan ana yapıdır.
//
// Builder tek bir backend'e bağlıdır; sorgular evrensel "?" işaretiyle kurulur ve
// çalıştırılmadan önce backend'in yerel placeholder'ına çevrilir. Değerler
// hiçbir zaman SQL metnine yazılmaz, her zaman binding olarak gönderilir.
//
// Genel kullanım örneği:
//
//	rows, err := db.Table("users").
//	    Select("id", "name", "email").
//	    Where("status", "active").
//	    Where("age", ">", 18).
//	    OrderBy("created_at", "desc").
//	    Limit(10).
//	    GetContext(ctx)
//
// Zincir metotları hata döndürmez. İlk hatalı kullanım (geçersiz operatör,
// eksik argüman vb.) builder içinde saklanır ve bir sonraki derleme ya da
// çalıştırmada döner.
//
// Builder örnekleri concurrent-safe değildir. Terminal bir çağrıdan sonra
// aynı builder ile ilgisiz bir sorgu kurulacaksa Reset() veya Clone() kullanılmalıdır.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
type Builder struct {
	backend backend.Backend
	logger  *slog.Logger
	scanner Scanner

	table string

	// Selected columns
	columns  []string
	distinct bool

	// Query clauses
	wheres  []dialect.Predicate
	joins   []dialect.JoinClause
	groupBy []string
	having  []dialect.Predicate
	orders  []dialect.OrderClause

	// Limits
	limit  *int
	offset *int

	// Accumulated error
	err error
}

// NewBuilder, verilen backend üzerinde çalışan yeni bir Builder oluşturur.
// Backend nil ise builder yalnızca SQL üretir (evrensel "?" ile); terminal
// çağrılar ErrNoBackend döner.
func NewBuilder(b backend.Backend) *Builder {
	return &Builder{
		backend: b,
		logger:  slog.New(slog.DiscardHandler),
		scanner: NewDefaultScanner(),
		columns: []string{"*"},
	}
}

// Table, sorguda kullanılacak tablo adını ayarlar.
// "users", "main.users", "users u" ve "users as u" biçimleri kabul edilir.
func (b *Builder) Table(name string) *Builder {
	if _, _, err := validation.ValidateTable(name); err != nil {
		b.setErr(newConfigError(ErrInvalidIdentifier, "table", name, err))
		return b
	}
	b.table = name
	return b
}

// TableAs, tabloyu bir alias ile ayarlar: TableAs("users", "u") → "users AS u".
func (b *Builder) TableAs(name, alias string) *Builder {
	return b.Table(name + " AS " + alias)
}

// From, Table için takma addır.
func (b *Builder) From(name string) *Builder {
	return b.Table(name)
}

// Select, seçilecek kolon listesini değiştirir. Argümansız çağrı listeyi olduğu gibi bırakır.
// Kolonlar ifade olarak yazılır ("COUNT(*) AS total" gibi) ve doğrulanmaz.
func (b *Builder) Select(columns ...string) *Builder {
	if len(columns) > 0 {
		b.columns = append([]string(nil), columns...)
	}
	return b
}

// Distinct, sorguyu SELECT DISTINCT olarak işaretler.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

// Where, bir WHERE koşulu ekler.
//
//	Where("name", "John")      // name = ?
//	Where("age", ">", 30)      // age > ?
//
// Her çağrı tam olarak bir binding ekler.
func (b *Builder) Where(column string, args ...any) *Builder {
	if p, ok := b.predicate("where", column, args); ok {
		b.wheres = append(b.wheres, p)
	}
	return b
}

// WhereIn, "column IN (?, ?, ...)" koşulu ekler. Boş liste hiçbir şey eklemez.
func (b *Builder) WhereIn(column string, values []any) *Builder {
	return b.whereList(column, "IN", values)
}

// WhereNotIn, "column NOT IN (?, ?, ...)" koşulu ekler. Boş liste hiçbir şey eklemez.
func (b *Builder) WhereNotIn(column string, values []any) *Builder {
	return b.whereList(column, "NOT IN", values)
}

func (b *Builder) whereList(column, keyword string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	b.wheres = append(b.wheres, dialect.Predicate{
		Column: fmt.Sprintf("%s %s (%s)", column, keyword, markers(len(values))),
		Values: append([]any(nil), values...),
	})
	return b
}

// WhereBetween, "column BETWEEN ? AND ?" koşulu ekler.
func (b *Builder) WhereBetween(column string, low, high any) *Builder {
	b.wheres = append(b.wheres, dialect.Predicate{
		Column: column + " BETWEEN ? AND ?",
		Values: []any{low, high},
	})
	return b
}

// WhereNotBetween, "column NOT BETWEEN ? AND ?" koşulu ekler.
func (b *Builder) WhereNotBetween(column string, low, high any) *Builder {
	b.wheres = append(b.wheres, dialect.Predicate{
		Column: column + " NOT BETWEEN ? AND ?",
		Values: []any{low, high},
	})
	return b
}

// WhereLike, "column LIKE ?" koşulu ekler.
func (b *Builder) WhereLike(column, pattern string) *Builder {
	return b.Where(column, "LIKE", pattern)
}

// WhereNotLike, "column NOT LIKE ?" koşulu ekler.
func (b *Builder) WhereNotLike(column, pattern string) *Builder {
	return b.Where(column, "NOT LIKE", pattern)
}

// WhereRaw, ham bir WHERE ifadesi ekler. İfadedeki her "?" için bir binding verilmelidir.
//
//	WhereRaw("votes > ? OR name = ?", 10, "admin") // (votes > ? OR name = ?)
//
// İfade parantez içine alınır; böylece OR içeren ifadeler diğer koşullarla
// AND ile güvenle birleşir.
func (b *Builder) WhereRaw(expr string, bindings ...any) *Builder {
	if p, ok := b.rawPredicate("where", expr, bindings); ok {
		b.wheres = append(b.wheres, p)
	}
	return b
}

// WhereNested, callback içinde kurulan koşulları parantezli tek bir grup
// olarak ekler. Grup boşsa hiçbir şey eklenmez.
//
//	WhereNested(func(q *Builder) {
//	    q.Where("votes", ">", 100).WhereNotNull("email")
//	}) // (votes > ? AND email IS NOT NULL)
func (b *Builder) WhereNested(fn func(*Builder)) *Builder {
	nested := NewBuilder(b.backend)
	fn(nested)
	if nested.err != nil {
		b.setErr(nested.err)
		return b
	}
	if len(nested.wheres) == 0 {
		return b
	}
	b.wheres = append(b.wheres, dialect.Predicate{
		Column: "(" + joinPredicates(nested.wheres) + ")",
		Values: predicateBindings(nested.wheres),
	})
	return b
}

// WhereNull, "column IS NULL" koşulu ekler.
func (b *Builder) WhereNull(column string) *Builder {
	b.wheres = append(b.wheres, dialect.Predicate{Column: column + " IS NULL"})
	return b
}

// WhereNotNull, "column IS NOT NULL" koşulu ekler.
func (b *Builder) WhereNotNull(column string) *Builder {
	b.wheres = append(b.wheres, dialect.Predicate{Column: column + " IS NOT NULL"})
	return b
}

// Join, INNER JOIN ekler.
func (b *Builder) Join(table, first, operator, second string) *Builder {
	return b.addJoin(dialect.JoinInner, table, first, operator, second)
}

// LeftJoin, LEFT JOIN ekler.
func (b *Builder) LeftJoin(table, first, operator, second string) *Builder {
	return b.addJoin(dialect.JoinLeft, table, first, operator, second)
}

// RightJoin, RIGHT JOIN ekler.
func (b *Builder) RightJoin(table, first, operator, second string) *Builder {
	return b.addJoin(dialect.JoinRight, table, first, operator, second)
}

func (b *Builder) addJoin(kind dialect.JoinType, table, first, operator, second string) *Builder {
	if _, _, err := validation.ValidateTable(table); err != nil {
		b.setErr(newConfigError(ErrInvalidIdentifier, "join", table, err))
		return b
	}
	op, err := validation.NormalizeOperator(operator)
	if err != nil {
		b.setErr(newConfigError(ErrInvalidOperator, "join", operator, err))
		return b
	}
	b.joins = append(b.joins, dialect.JoinClause{
		Type:     kind,
		Table:    table,
		First:    first,
		Operator: op,
		Second:   second,
	})
	return b
}

// CrossJoin, CROSS JOIN ekler.
func (b *Builder) CrossJoin(table string) *Builder {
	if _, _, err := validation.ValidateTable(table); err != nil {
		b.setErr(newConfigError(ErrInvalidIdentifier, "join", table, err))
		return b
	}
	b.joins = append(b.joins, dialect.JoinClause{Type: dialect.JoinCross, Table: table})
	return b
}

// GroupBy, GROUP BY kolonları ekler.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.groupBy = append(b.groupBy, columns...)
	return b
}

// Having, HAVING koşulu ekler. Argüman biçimi Where ile aynıdır.
func (b *Builder) Having(column string, args ...any) *Builder {
	if p, ok := b.predicate("having", column, args); ok {
		b.having = append(b.having, p)
	}
	return b
}

// HavingRaw, ham bir HAVING ifadesi ekler. Kurallar WhereRaw ile aynıdır.
func (b *Builder) HavingRaw(expr string, bindings ...any) *Builder {
	if p, ok := b.rawPredicate("having", expr, bindings); ok {
		b.having = append(b.having, p)
	}
	return b
}

// OrderBy, ORDER BY ekler. Yön verilmezse "asc" kullanılır; yön küçük harfe çevrilir.
func (b *Builder) OrderBy(column string, direction ...string) *Builder {
	dir := string(dialect.OrderAsc)
	if len(direction) > 0 {
		dir = direction[0]
	}

	normalized, err := validation.NormalizeDirection(dir)
	if err != nil {
		b.setErr(newConfigError(ErrInvalidDirection, "order", dir, err))
		return b
	}
	b.orders = append(b.orders, dialect.OrderClause{
		Column:    column,
		Direction: dialect.OrderDirection(normalized),
	})
	return b
}

// OrderByDesc, azalan sırada ORDER BY ekler.
func (b *Builder) OrderByDesc(column string) *Builder {
	return b.OrderBy(column, string(dialect.OrderDesc))
}

// Latest, kolona (varsayılan created_at) göre azalan sıralar.
func (b *Builder) Latest(column ...string) *Builder {
	return b.OrderByDesc(timestampColumn(column))
}

// Oldest, kolona (varsayılan created_at) göre artan sıralar.
func (b *Builder) Oldest(column ...string) *Builder {
	return b.OrderBy(timestampColumn(column))
}

func timestampColumn(column []string) string {
	if len(column) > 0 && column[0] != "" {
		return column[0]
	}
	return "created_at"
}

// Limit, LIMIT ekler. Negatif değer derleme sırasında ErrInvalidLimit üretir.
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Offset, OFFSET ekler. Negatif değer derleme sırasında ErrInvalidOffset üretir.
func (b *Builder) Offset(n int) *Builder {
	b.offset = &n
	return b
}

// Take, Limit için takma addır.
func (b *Builder) Take(n int) *Builder {
	return b.Limit(n)
}

// Skip, Offset için takma addır.
func (b *Builder) Skip(n int) *Builder {
	return b.Offset(n)
}

// ForPage, sayfa bazlı limit ve offset belirler. Sayfalar 1'den başlar.
func (b *Builder) ForPage(page, perPage int) *Builder {
	if page < 1 {
		page = 1
	}
	return b.Limit(perPage).Offset((page - 1) * perPage)
}

// Unless, koşul yanlışsa callback'i uygular.
func (b *Builder) Unless(condition bool, fn func(*Builder)) *Builder {
	return b.When(!condition, fn)
}

// When, koşul doğruysa callback'i builder üzerinde uygular.
func (b *Builder) When(condition bool, fn func(*Builder)) *Builder {
	if condition {
		fn(b)
	}
	return b
}

// predicate, Where/Having argümanlarını (column, value) veya
// (column, operator, value) biçiminde çözer.
func (b *Builder) predicate(clause, column string, args []any) (dialect.Predicate, bool) {
	var (
		operator = "="
		value    any
	)

	switch len(args) {
	case 1:
		value = args[0]
	case 2:
		op, ok := args[0].(string)
		if !ok {
			b.setErr(newConfigError(ErrInvalidArguments, clause, args[0], fmt.Errorf("operator must be a string, got %T", args[0])))
			return dialect.Predicate{}, false
		}
		normalized, err := validation.NormalizeOperator(op)
		if err != nil {
			b.setErr(newConfigError(ErrInvalidOperator, clause, op, err))
			return dialect.Predicate{}, false
		}
		operator, value = normalized, args[1]
	default:
		b.setErr(newConfigError(ErrInvalidArguments, clause, column, fmt.Errorf("expected (column, value) or (column, operator, value), got %d arguments after column", len(args))))
		return dialect.Predicate{}, false
	}

	return dialect.Predicate{
		Column:   column,
		Operator: operator,
		Values:   []any{value},
	}, true
}

// rawPredicate, ham ifadeyi parantezli bir parça olarak kurar. "?" sayısı
// binding sayısıyla eşleşmezse hata kaydedilir.
func (b *Builder) rawPredicate(clause, expr string, bindings []any) (dialect.Predicate, bool) {
	if strings.TrimSpace(expr) == "" {
		b.setErr(newConfigError(ErrInvalidArguments, clause, expr, fmt.Errorf("raw expression is empty")))
		return dialect.Predicate{}, false
	}
	if n := dialect.CountMarkers(expr); n != len(bindings) {
		b.setErr(newConfigError(ErrInvalidArguments, clause, expr, fmt.Errorf("expression has %d markers, got %d bindings", n, len(bindings))))
		return dialect.Predicate{}, false
	}
	return dialect.Predicate{
		Column: "(" + expr + ")",
		Values: append([]any(nil), bindings...),
	}, true
}

// setErr yalnızca ilk hatayı saklar.
func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err, birikmiş hatayı döndürür.
func (b *Builder) Err() error {
	return b.err
}

// Bindings, WHERE ve ardından HAVING değerlerini derlenecek SQL'deki
// placeholder sırasıyla döndürür.
func (b *Builder) Bindings() []any {
	bindings := predicateBindings(b.wheres)
	return append(bindings, predicateBindings(b.having)...)
}

// Clone, Builder'ın bağımsız bir kopyasını oluşturur.
func (b *Builder) Clone() *Builder {
	clone := *b

	clone.columns = append([]string(nil), b.columns...)
	clone.wheres = append([]dialect.Predicate(nil), b.wheres...)
	clone.joins = append([]dialect.JoinClause(nil), b.joins...)
	clone.groupBy = append([]string(nil), b.groupBy...)
	clone.having = append([]dialect.Predicate(nil), b.having...)
	clone.orders = append([]dialect.OrderClause(nil), b.orders...)

	if b.limit != nil {
		n := *b.limit
		clone.limit = &n
	}
	if b.offset != nil {
		n := *b.offset
		clone.offset = &n
	}
	return &clone
}

// Reset, tüm sorgu durumunu temizler (backend ve logger hariç).
func (b *Builder) Reset() *Builder {
	b.table = ""
	b.columns = []string{"*"}
	b.distinct = false
	b.wheres = nil
	b.joins = nil
	b.groupBy = nil
	b.having = nil
	b.orders = nil
	b.limit = nil
	b.offset = nil
	b.err = nil
	return b
}

// ToSQL, SELECT sorgusunu backend'in yerel placeholder'ıyla ve bindinglerle döndürür.
func (b *Builder) ToSQL() (string, []any, error) {
	return b.grammar().compileSelect(b)
}

// ToInsertSQL, tek satırlık INSERT sorgusunu derler. Kolonlar alfabetik sıradadır.
func (b *Builder) ToInsertSQL(row Row) (string, []any, error) {
	if err := b.check(); err != nil {
		return "", nil, err
	}
	columns := sortedKeys(row)
	if len(columns) == 0 {
		return "", nil, newConfigError(ErrInvalidArguments, "insert", row, fmt.Errorf("row has no columns"))
	}

	bindings := make([]any, len(columns))
	for i, col := range columns {
		bindings[i] = row[col]
	}
	return b.grammar().compileInsert(b.table, columns), bindings, nil
}

// ToUpdateSQL, UPDATE sorgusunu derler.
func (b *Builder) ToUpdateSQL(data Row) (string, []any, error) {
	return b.grammar().compileUpdate(b, data)
}

// ToDeleteSQL, DELETE sorgusunu derler.
func (b *Builder) ToDeleteSQL() (string, []any, error) {
	return b.grammar().compileDelete(b)
}

// Dump, derlenen SELECT sorgusunu ve bindingleri Info seviyesinde loglar.
func (b *Builder) Dump() *Builder {
	query, bindings, err := b.ToSQL()
	if err != nil {
		b.logger.Error("dump failed", "table", b.table, "error", err)
		return b
	}
	b.logger.Info("query dump", "sql", query, "bindings", bindings)
	return b
}

// check, derleme öncesi ortak koşulları doğrular.
func (b *Builder) check() error {
	if b.err != nil {
		return b.err
	}
	if b.table == "" {
		return newConfigError(ErrNoTable, "", nil, nil)
	}
	return nil
}

func (b *Builder) grammar() grammar {
	p := dialect.Question
	if b.backend != nil {
		p = b.backend.Placeholder()
	}
	return grammar{placeholder: p}
}

func predicateBindings(preds []dialect.Predicate) []any {
	bindings := []any{}
	for _, p := range preds {
		bindings = append(bindings, p.Values...)
	}
	return bindings
}
