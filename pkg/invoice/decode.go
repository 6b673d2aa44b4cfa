package invoice

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// Request описывает тело запроса на расчёт или выставление счёта.
type Request struct {
	Fields `mapstructure:",squash"`
	// WithholdingRate в процентах; nil означает ставку по умолчанию.
	WithholdingRate *decimal.Decimal `mapstructure:"irpf_rate"`
}

// DecodeFields builds Fields from loosely typed form values. Amounts may be
// strings or numbers; blank values are treated as missing.
func DecodeFields(raw map[string]any) (Fields, error) {
	var f Fields
	if err := decode(raw, &f); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// DecodeRequest is DecodeFields plus the optional irpf_rate.
func DecodeRequest(raw map[string]any) (Request, error) {
	var r Request
	if err := decode(raw, &r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func decode(raw map[string]any, out any) error {
	in := make(map[string]any, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		in[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToDecimalHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode invoice fields: %w", err)
	}
	return nil
}

func stringToDecimalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(v, ",", ".")))
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return data, nil
	}
}
