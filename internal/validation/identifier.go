// Package validation, sorgu oluşturucunun tablo adlarını, operatörlerini ve
// sıralama yönlerini doğrulamak için kullandığı dahili yardımcıları içerir.
//
// Kolon listeleri bilinçli olarak doğrulanmaz: "COUNT(*) AS aggregate" veya
// "users.id" gibi ifadeler olduğu gibi SQL'e yazılır. Tablo adı ise tek bir
// tanımlayıcı (isteğe bağlı şema ve alias ile) olmak zorundadır.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
package validation

import (
	"regexp"
	"strings"
)

// maxIdentifierLength is the longest identifier any supported family accepts.
const maxIdentifierLength = 128

// wordRegex tek bir isim parçasıyla eşleşir: harf veya alt çizgiyle başlar,
// harf, rakam ve alt çizgiyle devam eder.
var wordRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func invalid(id, reason string) *IdentifierError {
	return &IdentifierError{Identifier: id, Reason: reason}
}

// ValidateIdentifier, "name" veya "schema.name" biçimindeki bir identifier'ı doğrular.
func ValidateIdentifier(id string) error {
	switch {
	case id == "":
		return invalid(id, "identifier cannot be empty")
	case len(id) > maxIdentifierLength:
		return invalid(id, "identifier exceeds maximum length of 128 characters")
	}

	parts := strings.Split(id, ".")
	if len(parts) > 2 {
		return invalid(id, "at most one schema qualifier is allowed")
	}
	for _, part := range parts {
		if !wordRegex.MatchString(part) {
			return invalid(id, "identifier contains invalid characters; only letters, numbers, underscores, and dots are allowed")
		}
	}
	return nil
}

// ValidateTable, bir tablo referansını doğrular ve adını, varsa alias'ını döndürür.
// Desteklenen formatlar: "table", "schema.table", "table alias", "table as alias".
func ValidateTable(table string) (name, alias string, err error) {
	fields := strings.Fields(table)

	switch {
	case len(fields) == 0:
		return "", "", invalid(table, "table name cannot be empty")
	case len(fields) == 1:
		name = fields[0]
	case len(fields) == 2:
		name, alias = fields[0], fields[1]
	case len(fields) == 3 && strings.EqualFold(fields[1], "as"):
		name, alias = fields[0], fields[2]
	default:
		return "", "", invalid(table, "expected \"table\", \"table alias\" or \"table AS alias\"")
	}

	if err := ValidateIdentifier(name); err != nil {
		return "", "", err
	}
	if alias != "" && !wordRegex.MatchString(alias) {
		return "", "", invalid(alias, "invalid alias")
	}
	return name, alias, nil
}

// IdentifierError, identifier doğrulama hatalarını temsil eder.
type IdentifierError struct {
	Identifier string
	Reason     string
}

func (e *IdentifierError) Error() string {
	if e.Identifier == "" {
		return "dbquery: invalid identifier: " + e.Reason
	}
	return "dbquery: invalid identifier '" + e.Identifier + "': " + e.Reason
}
