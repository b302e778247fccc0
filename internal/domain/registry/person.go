package registry

import (
	"strings"
	"unicode"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Person is a reusable party record: a holder, beneficiary, declarant or
// other interested party. Persons are matched by DNI/NIF when available.
type Person struct {
	shared.TenantAggregateRoot
	FirstName string
	LastName  string
	DniNif    string
	Email     string
	Phone     string
	Address   string
}

// NewPerson creates a person record
func NewPerson(tenantID uuid.UUID, firstName, lastName, dniNif string) (*Person, error) {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "first name is required")
	}
	return &Person{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FirstName:           firstName,
		LastName:            strings.TrimSpace(lastName),
		DniNif:              NormalizeDniNif(dniNif),
	}, nil
}

// FullName returns "FirstName LastName" with single spacing
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// NormalizeDniNif uppercases and strips spacing from a document number
func NormalizeDniNif(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName lowercases and strips diacritics for accent-insensitive search
// ("José Martínez" matches "jose martinez").
func FoldName(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
