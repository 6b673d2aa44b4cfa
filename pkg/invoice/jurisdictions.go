package invoice

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.yaml.in/yaml/v4"
)

//go:embed jurisdictions.yaml
var defaultJurisdictionsYAML []byte

// Jurisdictions описывает таблицу стран для классификации счетов.
type Jurisdictions struct {
	Domestic               string
	VATRate                decimal.Decimal
	DefaultWithholdingRate decimal.Decimal
	EUMembers              map[string]struct{}
	// Aliases maps alternative codes (EL) to the code used in the table (GR).
	Aliases map[string]string
}

type jurisdictionsFile struct {
	Domestic struct {
		Country                string `yaml:"country"`
		VATRate                string `yaml:"vat_rate"`
		DefaultWithholdingRate string `yaml:"default_withholding_rate"`
	} `yaml:"domestic"`
	CountryAliases map[string]string `yaml:"country_aliases"`
	EUMemberStates []string          `yaml:"eu_member_states"`
}

// DefaultJurisdictions returns the embedded table. It panics only if the embedded file is broken.
func DefaultJurisdictions() Jurisdictions {
	j, err := ParseJurisdictions(defaultJurisdictionsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded jurisdictions: %v", err))
	}
	return j
}

// LoadJurisdictions reads a table from path, or returns the embedded one when path is empty.
func LoadJurisdictions(path string) (Jurisdictions, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultJurisdictions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Jurisdictions{}, fmt.Errorf("read jurisdictions file %q: %w", path, err)
	}
	return ParseJurisdictions(data)
}

func ParseJurisdictions(data []byte) (Jurisdictions, error) {
	var raw jurisdictionsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Jurisdictions{}, fmt.Errorf("parse jurisdictions: %w", err)
	}

	domestic := normalizeCountry(raw.Domestic.Country)
	if domestic == "" {
		return Jurisdictions{}, errors.New("jurisdictions: domestic country is required")
	}
	vat, err := decimal.NewFromString(strings.TrimSpace(raw.Domestic.VATRate))
	if err != nil {
		return Jurisdictions{}, fmt.Errorf("jurisdictions: vat_rate: %w", err)
	}
	withholding, err := decimal.NewFromString(strings.TrimSpace(raw.Domestic.DefaultWithholdingRate))
	if err != nil {
		return Jurisdictions{}, fmt.Errorf("jurisdictions: default_withholding_rate: %w", err)
	}

	members := make(map[string]struct{}, len(raw.EUMemberStates))
	for _, c := range raw.EUMemberStates {
		c = normalizeCountry(c)
		if c == "" || c == domestic {
			continue
		}
		members[c] = struct{}{}
	}

	aliases := make(map[string]string, len(raw.CountryAliases))
	for from, to := range raw.CountryAliases {
		from, to = normalizeCountry(from), normalizeCountry(to)
		if from == "" || to == "" {
			return Jurisdictions{}, fmt.Errorf("jurisdictions: invalid country alias %q: %q", from, to)
		}
		aliases[from] = to
	}

	return Jurisdictions{
		Domestic:               domestic,
		VATRate:                vat,
		DefaultWithholdingRate: withholding,
		EUMembers:              members,
		Aliases:                aliases,
	}, nil
}

// Classify maps a country code to a tax scenario. Unknown codes are non_eu.
func (j Jurisdictions) Classify(country string) Scenario {
	c := j.canonical(country)
	if c == j.Domestic {
		return ScenarioDomestic
	}
	if _, ok := j.EUMembers[c]; ok {
		return ScenarioEUB2B
	}
	return ScenarioNonEU
}

func (j Jurisdictions) canonical(country string) string {
	c := normalizeCountry(country)
	if alias, ok := j.Aliases[c]; ok {
		return alias
	}
	return c
}

func normalizeCountry(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}
