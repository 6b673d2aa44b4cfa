package invoice

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Scenario string

const (
	ScenarioDomestic Scenario = "domestic"
	ScenarioEUB2B    Scenario = "eu_b2b"
	ScenarioNonEU    Scenario = "non_eu"
)

var hundred = decimal.NewFromInt(100)

// Calculation хранит результат расчёта налогов по счёту. Все суммы округлены до 2 знаков.
type Calculation struct {
	Scenario       Scenario
	BaseAmount     decimal.Decimal
	VATRate        decimal.Decimal
	VATAmount      decimal.Decimal
	VATApplicable  bool
	ReverseCharge  bool
	IRPFRate       decimal.Decimal
	IRPFAmount     decimal.Decimal
	IRPFApplicable bool
	Subtotal       decimal.Decimal
	TotalAmount    decimal.Decimal
}

type calculationJSON struct {
	Scenario       Scenario    `json:"scenario"`
	BaseAmount     json.Number `json:"base_amount"`
	VATRate        json.Number `json:"vat_rate"`
	VATAmount      json.Number `json:"vat_amount"`
	VATApplicable  bool        `json:"vat_applicable"`
	ReverseCharge  bool        `json:"reverse_charge"`
	IRPFRate       json.Number `json:"irpf_rate"`
	IRPFAmount     json.Number `json:"irpf_amount"`
	IRPFApplicable bool        `json:"irpf_applicable"`
	Subtotal       json.Number `json:"subtotal"`
	TotalAmount    json.Number `json:"total_amount"`
}

func fixed2(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(2)) }

// MarshalJSON writes every amount and rate as a number with two decimals.
func (c Calculation) MarshalJSON() ([]byte, error) {
	return json.Marshal(calculationJSON{
		Scenario:       c.Scenario,
		BaseAmount:     fixed2(c.BaseAmount),
		VATRate:        fixed2(c.VATRate),
		VATAmount:      fixed2(c.VATAmount),
		VATApplicable:  c.VATApplicable,
		ReverseCharge:  c.ReverseCharge,
		IRPFRate:       fixed2(c.IRPFRate),
		IRPFAmount:     fixed2(c.IRPFAmount),
		IRPFApplicable: c.IRPFApplicable,
		Subtotal:       fixed2(c.Subtotal),
		TotalAmount:    fixed2(c.TotalAmount),
	})
}

// Calculator is stateless apart from its jurisdiction table and safe for concurrent use.
type Calculator struct {
	j Jurisdictions
}

func NewCalculator(j Jurisdictions) *Calculator {
	return &Calculator{j: j}
}

func (c *Calculator) Jurisdictions() Jurisdictions { return c.j }

// CalculateDefault uses the default withholding rate of the table.
func (c *Calculator) CalculateDefault(base decimal.Decimal, country string) Calculation {
	return c.Calculate(base, country, c.j.DefaultWithholdingRate)
}

// Calculate never fails: unknown countries fall into the non_eu scenario.
// withholdingRate is a percentage and only applies to domestic invoices.
func (c *Calculator) Calculate(base decimal.Decimal, country string, withholdingRate decimal.Decimal) Calculation {
	calc := Calculation{
		Scenario:   c.j.Classify(country),
		BaseAmount: base,
		VATRate:    decimal.Zero,
		VATAmount:  decimal.Zero,
		IRPFRate:   decimal.Zero,
		IRPFAmount: decimal.Zero,
	}

	switch calc.Scenario {
	case ScenarioDomestic:
		calc.VATRate = c.j.VATRate
		calc.VATAmount = percent(base, c.j.VATRate)
		calc.VATApplicable = true
		calc.IRPFRate = withholdingRate
		calc.IRPFAmount = percent(base, withholdingRate)
		calc.IRPFApplicable = true
	case ScenarioEUB2B:
		calc.VATApplicable = true
		calc.ReverseCharge = true
	case ScenarioNonEU:
	}

	calc.Subtotal = base.Add(calc.VATAmount).Round(2)
	calc.TotalAmount = calc.Subtotal.Sub(calc.IRPFAmount).Round(2)
	return calc
}

func percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred).Round(2)
}
