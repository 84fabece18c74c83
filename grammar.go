package dbquery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/biyonik/go-dbquery/dialect"
)

/*
=======================================================================================================================
 💠 GRAMMAR: SQL'in Diline Şekil Veren Katman 💠

 Builder yalnızca cümle parçalarını biriktirir; bu dosya onları tek bir SQL
 cümlesine çevirir.

 Derleme iki adımda yapılır:
   1. Cümle her zaman evrensel "?" işaretiyle kurulur.
   2. Sonuç, backend'in yerel placeholder'ına çevrilir (dialect.Translate).

 Böylece aynı Builder SQLite ve MySQL için "?" ile, PostgreSQL için
 "$1, $2, ..." ile çalışır. Değerler hiçbir zaman metne gömülmez; LIMIT ve
 OFFSET ise doğrulanmış tamsayı olduğu için literal olarak yazılır.

 Tablo ve kolon adları olduğu gibi yazılır (tırnaklama yapılmaz). Tablo adı
 Table() çağrısında doğrulanır; kolon ifadeleri serbest SQL'dir.

 @author    Ahmet ALTUN
 @github    github.com/biyonik
 @linkedin  linkedin.com/in/biyonik
 @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// grammar, bir builder'ın biriktirdiği cümleleri SQL metnine dönüştürür.
type grammar struct {
	placeholder dialect.Placeholder
}

// compileSelect → SELECT sorgusu derleyici.
func (g grammar) compileSelect(b *Builder) (string, []any, error) {
	query, err := g.selectSQL(b)
	if err != nil {
		return "", nil, err
	}
	return g.translate(query), b.Bindings(), nil
}

// selectSQL, SELECT cümlesini evrensel "?" ile üretir. Exists gibi sarmalayan
// çağrılar çeviriyi kendileri yapar.
func (g grammar) selectSQL(b *Builder) (string, error) {
	if err := b.check(); err != nil {
		return "", err
	}
	if b.limit != nil && *b.limit < 0 {
		return "", newConfigError(ErrInvalidLimit, "limit", *b.limit, nil)
	}
	if b.offset != nil && *b.offset < 0 {
		return "", newConfigError(ErrInvalidOffset, "offset", *b.offset, nil)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	for _, j := range b.joins {
		if j.Type == dialect.JoinCross {
			fmt.Fprintf(&sb, " %s %s", j.Type.Keyword(), j.Table)
			continue
		}
		fmt.Fprintf(&sb, " %s %s ON %s %s %s", j.Type.Keyword(), j.Table, j.First, j.Operator, j.Second)
	}

	sb.WriteString(compilePredicates(" WHERE ", b.wheres))

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}

	sb.WriteString(compilePredicates(" HAVING ", b.having))

	if len(b.orders) > 0 {
		orders := make([]string, len(b.orders))
		for i, o := range b.orders {
			orders[i] = o.Column + " " + string(o.Direction)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}

	if b.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*b.limit))
	}
	if b.offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(*b.offset))
	}

	return sb.String(), nil
}

// compileInsert → Tek kolon listesiyle INSERT sorgusu üretir.
// Aynı metin tekli ve toplu (ExecuteMany) insert için kullanılır.
func (g grammar) compileInsert(table string, columns []string) string {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), markers(len(columns)))
	return g.translate(query)
}

// compileUpdate → UPDATE sorgusu derler. SET kolonları alfabetik sıradadır;
// bindingler SET değerleri ve ardından WHERE değerleridir.
// WHERE yoksa tüm tablo güncellenir.
func (g grammar) compileUpdate(b *Builder, data Row) (string, []any, error) {
	if err := b.check(); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, newConfigError(ErrInvalidArguments, "update", data, fmt.Errorf("no columns to update"))
	}

	columns := sortedKeys(data)
	sets := make([]string, len(columns))
	bindings := make([]any, 0, len(columns)+len(b.wheres))
	for i, col := range columns {
		sets[i] = col + " = ?"
		bindings = append(bindings, data[col])
	}
	bindings = append(bindings, predicateBindings(b.wheres)...)

	query := "UPDATE " + b.table + " SET " + strings.Join(sets, ", ") + compilePredicates(" WHERE ", b.wheres)
	return g.translate(query), bindings, nil
}

// compileDelete → DELETE sorgusu üretir. WHERE yoksa tüm tablo silinir.
func (g grammar) compileDelete(b *Builder) (string, []any, error) {
	if err := b.check(); err != nil {
		return "", nil, err
	}
	query := "DELETE FROM " + b.table + compilePredicates(" WHERE ", b.wheres)
	return g.translate(query), predicateBindings(b.wheres), nil
}

func (g grammar) translate(query string) string {
	return dialect.Translate(query, g.placeholder)
}

// compilePredicates, koşulları AND ile birleştirir. Liste boşsa boş string döner.
func compilePredicates(keyword string, preds []dialect.Predicate) string {
	if len(preds) == 0 {
		return ""
	}
	return keyword + joinPredicates(preds)
}

func joinPredicates(preds []dialect.Predicate) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		if p.IsFragment() {
			parts[i] = p.Column
			continue
		}
		parts[i] = p.Column + " " + p.Operator + " ?"
	}
	return strings.Join(parts, " AND ")
}

// markers, n adet evrensel placeholder üretir: "?, ?, ?".
func markers(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
