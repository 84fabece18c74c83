package validation

import "strings"

// allowedOperators, WHERE ve HAVING cümlelerinde kabul edilen karşılaştırma
// operatörlerini tanımlar. IN, BETWEEN ve NULL kontrolleri ayrı metotlarla
// hazır parça (fragment) olarak üretildiği için burada yer almaz.
var allowedOperators = map[string]bool{
	// Karşılaştırma operatörleri
	"=":  true,
	"!=": true,
	"<>": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,

	// Desen eşleştirme operatörleri
	"LIKE":      true,
	"NOT LIKE":  true,
	"ILIKE":     true, // PostgreSQL
	"NOT ILIKE": true,

	// NULL güvenli karşılaştırma
	"IS":     true,
	"IS NOT": true,
	"<=>":    true, // MySQL
}

// NormalizeOperator, bir operatörü standart biçime (büyük harf, tek boşluk)
// normalleştirir. Geçersiz operatör girilirse hata döner.
func NormalizeOperator(op string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(op), " "))

	if !allowedOperators[normalized] {
		return "", &OperatorError{
			Operator: op,
			Reason:   "operator not in allowed list",
		}
	}

	return normalized, nil
}

// NormalizeDirection, ORDER BY yönünü küçük harfe çevirir ve doğrular.
func NormalizeDirection(direction string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(direction))
	if normalized != "asc" && normalized != "desc" {
		return "", &OperatorError{
			Operator: direction,
			Reason:   "order direction must be asc or desc",
		}
	}
	return normalized, nil
}

// AllowedOperators, izin verilen tüm operatörleri döndürür.
func AllowedOperators() []string {
	ops := make([]string, 0, len(allowedOperators))
	for op := range allowedOperators {
		ops = append(ops, op)
	}
	return ops
}

// OperatorError, operatör doğrulama hatasını temsil eder.
type OperatorError struct {
	Operator string
	Reason   string
}

// Error, error arayüzünü uygular ve hatayı açıklayıcı string olarak döner.
func (e *OperatorError) Error() string {
	return "dbquery: invalid operator '" + e.Operator + "': " + e.Reason
}
