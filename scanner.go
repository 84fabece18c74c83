package dbquery

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

//
// =====================================================================================
// 📚 DBQUERY – SCANNER BİRİMİ
// -------------------------------------------------------------------------------------
// Backend'ler satırları kolon adı → değer eşlemesi (Row) olarak döndürür.
// Bu dosya, bu satırların Go struct'larına aktarılmasını sağlayan Scanner
// altyapısını içerir.
//
// Çalışma biçimi:
//   1. Struct alanları `db:"column"` tag'lerine göre kolonlarla eşlenir
//      (tag yoksa alan adı büyük/küçük harf duyarsız karşılaştırılır)
//   2. Sürücünün döndürdüğü tip hedef alana zayıf tipli dönüşümle yazılır
//      (int64 → int, "42" → int, RFC3339 string → time.Time)
//   3. Eşleşmeyen kolonlar sessizce atlanır
//
// YAZAR BİLGİSİ
// @author    Ahmet ALTUN
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik
// @email     ahmet.altun60@gmail.com
// =====================================================================================
//

// Scanner okunan satırları Go modellerine map eden davranış sözleşmesidir.
type Scanner interface {
	// ScanRow → Tek satırı struct'a (veya map'e) işler.
	ScanRow(row Row, dest any) error

	// ScanRows → Birden fazla satırı slice içine işler.
	ScanRows(rows []Row, dest any) error
}

// DefaultScanner → Kütüphanenin standart tarama motorudur.
type DefaultScanner struct {
	tagName string
	hook    mapstructure.DecodeHookFunc
}

// NewDefaultScanner → `db` tag'ini kullanan varsayılan scanner'ı oluşturur.
func NewDefaultScanner() *DefaultScanner {
	return &DefaultScanner{
		tagName: "db",
		hook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	}
}

// ScanRow → dest bir struct veya map pointer'ı olmalıdır.
func (s *DefaultScanner) ScanRow(row Row, dest any) error {
	v, err := destination(dest)
	if err != nil {
		return err
	}
	if k := v.Elem().Kind(); k != reflect.Struct && k != reflect.Map {
		return ErrInvalidDestination
	}
	return s.decode(row, dest)
}

// ScanRows → dest bir slice pointer'ı olmalıdır ([]User veya []*User).
// Slice sonuçlarla değiştirilir; sıfır satır boş slice üretir.
func (s *DefaultScanner) ScanRows(rows []Row, dest any) error {
	v, err := destination(dest)
	if err != nil {
		return err
	}
	slice := v.Elem()
	if slice.Kind() != reflect.Slice {
		return ErrInvalidDestination
	}
	if len(rows) == 0 {
		slice.Set(reflect.MakeSlice(slice.Type(), 0, 0))
		return nil
	}
	return s.decode(rows, dest)
}

func (s *DefaultScanner) decode(input, dest any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       s.hook,
		TagName:          s.tagName,
		WeaklyTypedInput: true,
		Result:           dest,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("dbquery: scan into %T: %w", dest, err)
	}
	return nil
}

func destination(dest any) (reflect.Value, error) {
	if dest == nil {
		return reflect.Value{}, ErrNilDestination
	}
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer {
		return reflect.Value{}, ErrInvalidDestination
	}
	if v.IsNil() {
		return reflect.Value{}, ErrNilDestination
	}
	return v, nil
}
