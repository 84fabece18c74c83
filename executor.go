package dbquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/biyonik/go-dbquery/backend"
)

/*
=======================================================================================================================
  💠 EXECUTOR – Builder'ın Sonuç Üreten Yüzü 💠

  Bu dosya Builder'ın terminal metotlarını içerir: Get, First, Insert, Update,
  Delete, aggregate fonksiyonları ve Exists.

  Her terminal metot iki biçimde gelir:
    - XContext(ctx, ...) → context kontrolü çağıranda
    - X(...)             → context.Background() ile kısayol

  Aggregate, Exists ve First çağrıları builder durumunu geçici olarak değiştirir
  (kolon listesi veya LIMIT) ve hata olsa bile defer ile eski haline getirir.
  Bu sayede aynı builder başka bir terminal çağrı için tekrar kullanılabilir.

  Backend'den gelen hatalar değiştirilmeden çağırana döner.

  @author    Ahmet ALTUN
  @github    github.com/biyonik
  @linkedin  linkedin.com/in/biyonik
  @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// aggregateAlias, aggregate sorgularında sonucun okunduğu kolon adıdır.
const aggregateAlias = "aggregate"

// ----------------------------------------------------------------------------
// SELECT
// ----------------------------------------------------------------------------

// GetContext, SELECT sorgusunu çalıştırır ve tüm satırları döndürür.
// Eşleşme yoksa boş slice döner.
func (b *Builder) GetContext(ctx context.Context) ([]Row, error) {
	be, err := b.requireBackend()
	if err != nil {
		return nil, err
	}
	query, bindings, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	return be.FetchAll(ctx, query, bindings)
}

// Get, GetContext'in context.Background() ile çalışan kısayoludur.
func (b *Builder) Get() ([]Row, error) {
	return b.GetContext(context.Background())
}

// FirstContext, LIMIT 1 ile ilk satırı döndürür. Satır yoksa (nil, nil) döner.
// Önceki LIMIT değeri çağrıdan sonra geri yüklenir.
func (b *Builder) FirstContext(ctx context.Context) (Row, error) {
	be, err := b.requireBackend()
	if err != nil {
		return nil, err
	}

	previous := b.limit
	defer func() { b.limit = previous }()
	b.Limit(1)

	query, bindings, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	return be.FetchOne(ctx, query, bindings)
}

// First, FirstContext'in kısayoludur.
func (b *Builder) First() (Row, error) {
	return b.FirstContext(context.Background())
}

// GetIntoContext, tüm satırları dest slice'ına tarar.
//
//	var users []User
//	err := db.Table("users").Where("active", 1).GetIntoContext(ctx, &users)
func (b *Builder) GetIntoContext(ctx context.Context, dest any) error {
	rows, err := b.GetContext(ctx)
	if err != nil {
		return err
	}
	return b.scanner.ScanRows(rows, dest)
}

// GetInto, GetIntoContext'in kısayoludur.
func (b *Builder) GetInto(dest any) error {
	return b.GetIntoContext(context.Background(), dest)
}

// FirstIntoContext, ilk satırı dest struct'ına tarar. Satır yoksa ErrNoRows döner.
func (b *Builder) FirstIntoContext(ctx context.Context, dest any) error {
	row, err := b.FirstContext(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrNoRows
	}
	return b.scanner.ScanRow(row, dest)
}

// FirstInto, FirstIntoContext'in kısayoludur.
func (b *Builder) FirstInto(dest any) error {
	return b.FirstIntoContext(context.Background(), dest)
}

// ----------------------------------------------------------------------------
// Aggregates
// ----------------------------------------------------------------------------

// CountContext, COUNT(column) değerini döndürür. Kolon verilmezse COUNT(*) kullanılır.
// Daha önce eklenen WHERE / JOIN koşulları sorguya dahildir.
func (b *Builder) CountContext(ctx context.Context, columns ...string) (int64, error) {
	column := "*"
	if len(columns) > 0 && columns[0] != "" {
		column = columns[0]
	}

	v, err := b.aggregate(ctx, "COUNT", column)
	if err != nil || v == nil {
		return 0, err
	}
	return cast.ToInt64E(v)
}

// Count, CountContext'in kısayoludur.
func (b *Builder) Count(columns ...string) (int64, error) {
	return b.CountContext(context.Background(), columns...)
}

// MaxContext, MAX(column) değerini sürücünün döndürdüğü tipte verir. Satır yoksa nil döner.
func (b *Builder) MaxContext(ctx context.Context, column string) (any, error) {
	return b.aggregate(ctx, "MAX", column)
}

// Max, MaxContext'in kısayoludur.
func (b *Builder) Max(column string) (any, error) {
	return b.MaxContext(context.Background(), column)
}

// MinContext, MIN(column) değerini döndürür.
func (b *Builder) MinContext(ctx context.Context, column string) (any, error) {
	return b.aggregate(ctx, "MIN", column)
}

// Min, MinContext'in kısayoludur.
func (b *Builder) Min(column string) (any, error) {
	return b.MinContext(context.Background(), column)
}

// SumContext, SUM(column) değerini döndürür.
func (b *Builder) SumContext(ctx context.Context, column string) (any, error) {
	return b.aggregate(ctx, "SUM", column)
}

// Sum, SumContext'in kısayoludur.
func (b *Builder) Sum(column string) (any, error) {
	return b.SumContext(context.Background(), column)
}

// AvgContext, AVG(column) değerini float64 olarak döndürür. NULL sonuç 0 olur.
func (b *Builder) AvgContext(ctx context.Context, column string) (float64, error) {
	v, err := b.aggregate(ctx, "AVG", column)
	if err != nil || v == nil {
		return 0, err
	}
	return cast.ToFloat64E(v)
}

// Avg, AvgContext'in kısayoludur.
func (b *Builder) Avg(column string) (float64, error) {
	return b.AvgContext(context.Background(), column)
}

// aggregate, kolon listesini geçici olarak "FUNC(column) AS aggregate" ile
// değiştirir, ilk satırı okur ve kolonları geri yükler.
func (b *Builder) aggregate(ctx context.Context, fn, column string) (any, error) {
	be, err := b.requireBackend()
	if err != nil {
		return nil, err
	}

	previous := b.columns
	defer func() { b.columns = previous }()
	b.columns = []string{fmt.Sprintf("%s(%s) AS %s", fn, column, aggregateAlias)}

	query, bindings, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	row, err := be.FetchOne(ctx, query, bindings)
	if err != nil || row == nil {
		return nil, err
	}
	return lookup(row, aggregateAlias), nil
}

// ExistsContext, koşullara uyan en az bir satır olup olmadığını bildirir.
func (b *Builder) ExistsContext(ctx context.Context) (bool, error) {
	be, err := b.requireBackend()
	if err != nil {
		return false, err
	}

	previous := b.columns
	defer func() { b.columns = previous }()
	b.columns = []string{"1"}

	inner, err := b.grammar().selectSQL(b)
	if err != nil {
		return false, err
	}
	query := b.grammar().translate("SELECT EXISTS(" + inner + ") AS exists_flag")

	row, err := be.FetchOne(ctx, query, b.Bindings())
	if err != nil || row == nil {
		return false, err
	}
	return cast.ToBoolE(lookup(row, "exists_flag"))
}

// Exists, ExistsContext'in kısayoludur.
func (b *Builder) Exists() (bool, error) {
	return b.ExistsContext(context.Background())
}

// DoesntExistContext, ExistsContext'in tersidir.
func (b *Builder) DoesntExistContext(ctx context.Context) (bool, error) {
	ok, err := b.ExistsContext(ctx)
	return !ok, err
}

// DoesntExist, DoesntExistContext'in kısayoludur.
func (b *Builder) DoesntExist() (bool, error) {
	return b.DoesntExistContext(context.Background())
}

// ----------------------------------------------------------------------------
// INSERT / UPDATE / DELETE
// ----------------------------------------------------------------------------

// InsertContext, bir veya daha fazla satır ekler.
//
// Satırlar alfabetik kolon kümesine göre gruplanır. Tek satırlı gruplar
// Execute, çok satırlı gruplar ExecuteMany ile tek bir INSERT cümlesiyle
// gönderilir. Tüm gruplar çalıştırılır; sonuç grup sonuçlarının VE'sidir.
// Satır verilmezse veya tek satır boşsa backend'e gidilmeden false döner.
// Kolonsuz gruplar uyarıyla atlanır; hiçbir grup çalışmazsa false döner.
//
//	ok, err := db.Table("users").InsertContext(ctx,
//	    dbquery.Row{"name": "Ayşe", "email": "ayse@example.com"},
//	    dbquery.Row{"name": "Bora", "email": "bora@example.com"},
//	)
func (b *Builder) InsertContext(ctx context.Context, rows ...Row) (bool, error) {
	if len(rows) == 0 || (len(rows) == 1 && len(rows[0]) == 0) {
		return false, nil
	}
	be, err := b.requireBackend()
	if err != nil {
		return false, err
	}
	if err := b.check(); err != nil {
		return false, err
	}

	g := b.grammar()
	ran, all := false, true
	for _, group := range groupRows(rows) {
		if len(group.columns) == 0 {
			b.logger.Warn("insert group without columns skipped", "table", b.table, "rows", len(group.rows))
			continue
		}

		query := g.compileInsert(b.table, group.columns)
		sets := group.bindings()

		var ok bool
		if len(sets) == 1 {
			ok, err = be.Execute(ctx, query, sets[0])
		} else {
			ok, err = be.ExecuteMany(ctx, query, sets)
		}
		if err != nil {
			return false, err
		}
		ran = true
		all = all && ok
	}
	return ran && all, nil
}

// Insert, InsertContext'in kısayoludur.
func (b *Builder) Insert(rows ...Row) (bool, error) {
	return b.InsertContext(context.Background(), rows...)
}

// UpdateContext, mevcut WHERE koşullarına uyan satırları günceller.
// Boş veri backend'e gidilmeden false döner.
func (b *Builder) UpdateContext(ctx context.Context, data Row) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}
	be, err := b.requireBackend()
	if err != nil {
		return false, err
	}
	query, bindings, err := b.ToUpdateSQL(data)
	if err != nil {
		return false, err
	}
	return be.Execute(ctx, query, bindings)
}

// Update, UpdateContext'in kısayoludur.
func (b *Builder) Update(data Row) (bool, error) {
	return b.UpdateContext(context.Background(), data)
}

// DeleteContext, mevcut WHERE koşullarına uyan satırları siler.
// WHERE eklenmemişse tablodaki tüm satırlar silinir.
func (b *Builder) DeleteContext(ctx context.Context) (bool, error) {
	be, err := b.requireBackend()
	if err != nil {
		return false, err
	}
	query, bindings, err := b.ToDeleteSQL()
	if err != nil {
		return false, err
	}
	return be.Execute(ctx, query, bindings)
}

// Delete, DeleteContext'in kısayoludur.
func (b *Builder) Delete() (bool, error) {
	return b.DeleteContext(context.Background())
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func (b *Builder) requireBackend() (backend.Backend, error) {
	if b.backend == nil {
		return nil, ErrNoBackend
	}
	return b.backend, nil
}

// insertGroup, aynı kolon kümesine sahip satırları toplar.
type insertGroup struct {
	columns []string
	rows    []Row
}

func (g insertGroup) bindings() [][]any {
	sets := make([][]any, len(g.rows))
	for i, row := range g.rows {
		values := make([]any, len(g.columns))
		for j, col := range g.columns {
			values[j] = row[col]
		}
		sets[i] = values
	}
	return sets
}

// groupRows, satırları ilk görülme sırasını koruyarak kolon kümesine göre gruplar.
func groupRows(rows []Row) []insertGroup {
	var (
		groups []insertGroup
		index  = map[string]int{}
	)
	for _, row := range rows {
		columns := sortedKeys(row)
		key := strings.Join(columns, "\x00")

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, insertGroup{columns: columns})
		}
		groups[i].rows = append(groups[i].rows, row)
	}
	return groups
}

// lookup, sürücülerin kolon adını farklı harf büyüklüğüyle döndürebilmesine karşı
// anahtarı büyük/küçük harf duyarsız arar.
func lookup(row Row, key string) any {
	if v, ok := row[key]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}
