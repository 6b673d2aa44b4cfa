package invoice

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ibanPattern  = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{1,30}$`)
	swiftPattern = regexp.MustCompile(`^[A-Z0-9]{8}([A-Z0-9]{3})?$`)

	// NIF/NIE (8 цифр + буква) и CIF (буква + 7 цифр + контрольный символ).
	domesticPersonalTaxID = regexp.MustCompile(`^[0-9]{8}[A-Z]$`)
	domesticCompanyTaxID  = regexp.MustCompile(`^[A-Z][0-9]{7}[0-9A-Z]$`)
)

// Fields содержит реквизиты счёта в том виде, в каком их присылает клиент.
type Fields struct {
	LegalName   string           `mapstructure:"legal_name" json:"legal_name"`
	TaxID       string           `mapstructure:"tax_id" json:"tax_id"`
	Address     string           `mapstructure:"address" json:"address"`
	PostalCode  string           `mapstructure:"postal_code" json:"postal_code"`
	City        string           `mapstructure:"city" json:"city"`
	Country     string           `mapstructure:"country" json:"country"`
	BaseAmount  *decimal.Decimal `mapstructure:"base_amount" json:"base_amount" swaggertype:"number"`
	Description string           `mapstructure:"description" json:"description"`
	IBAN        string           `mapstructure:"iban" json:"iban"`
	SWIFT       string           `mapstructure:"swift" json:"swift,omitempty"`
}

// ValidationResult lists every problem found, in a fixed order.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validator checks invoice fields against the domestic jurisdiction.
type Validator struct {
	domestic string
	// TaxIDValidators holds format checks for non-domestic countries keyed by
	// upper-case country code. Countries without an entry accept any non-empty id.
	TaxIDValidators map[string]func(taxID string) bool
}

func NewValidator(j Jurisdictions) *Validator {
	return &Validator{domestic: j.Domestic, TaxIDValidators: map[string]func(string) bool{}}
}

var defaultValidator = NewValidator(DefaultJurisdictions())

// Validate checks f with the embedded jurisdiction table.
func Validate(f Fields) ValidationResult { return defaultValidator.Validate(f) }

// ValidateTaxID checks taxID with the embedded jurisdiction table.
func ValidateTaxID(taxID, country string) bool { return defaultValidator.ValidateTaxID(taxID, country) }

func (v *Validator) Validate(f Fields) ValidationResult {
	errs := make([]string, 0)
	required := func(value, label string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, label+" is required")
		}
	}

	required(f.LegalName, "Legal name")

	switch {
	case strings.TrimSpace(f.TaxID) == "":
		errs = append(errs, "Tax ID is required")
	case !v.ValidateTaxID(f.TaxID, f.Country):
		errs = append(errs, fmt.Sprintf("Tax ID format is invalid for country %s", normalizeCountry(f.Country)))
	}

	required(f.Address, "Address")
	required(f.PostalCode, "Postal code")
	required(f.City, "City")
	required(f.Country, "Country")

	switch {
	case f.BaseAmount == nil:
		errs = append(errs, "Base amount is required")
	case !f.BaseAmount.IsPositive():
		errs = append(errs, "Base amount must be greater than 0")
	}

	required(f.Description, "Description")

	switch {
	case strings.TrimSpace(f.IBAN) == "":
		errs = append(errs, "IBAN is required")
	case !ValidateIBAN(f.IBAN):
		errs = append(errs, "IBAN format is invalid")
	}

	if strings.TrimSpace(f.SWIFT) != "" && !ValidateSWIFT(f.SWIFT) {
		errs = append(errs, "SWIFT/BIC format is invalid")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateTaxID applies the domestic formats to the domestic country and the
// pluggable validators to the rest.
func (v *Validator) ValidateTaxID(taxID, country string) bool {
	id := strings.ToUpper(strings.TrimSpace(taxID))
	if id == "" {
		return false
	}
	c := normalizeCountry(country)
	if c == v.domestic {
		return domesticPersonalTaxID.MatchString(id) || domesticCompanyTaxID.MatchString(id)
	}
	if check, ok := v.TaxIDValidators[c]; ok && check != nil {
		return check(id)
	}
	return true
}

// ValidateIBAN checks the shape of an IBAN. The value is upper-cased and spaces
// are removed first, so printed groups ("ES91 2100 ...") are accepted; other
// separators are not.
func ValidateIBAN(iban string) bool {
	return ibanPattern.MatchString(compact(iban))
}

// ValidateSWIFT checks an 8 or 11 character BIC, normalized like ValidateIBAN.
func ValidateSWIFT(swift string) bool {
	return swiftPattern.MatchString(compact(swift))
}

func compact(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
