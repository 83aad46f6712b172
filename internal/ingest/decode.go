package ingest

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/go-viper/mapstructure/v2"
)

// Row is one loosely typed record keyed by column header.
type Row = map[string]any

// Decoder converts rows into domain records. Dates are normalized in loc.
type Decoder struct {
	loc *time.Location
}

func NewDecoder(loc *time.Location) *Decoder {
	if loc == nil {
		loc = time.Local
	}
	return &Decoder{loc: loc}
}

// Location returns the calendar used for date normalization.
func (d *Decoder) Location() *time.Location {
	return d.loc
}

// decode fills out from input. Nested fields that arrive as JSON text are
// parsed first; scalars go through the parse-or-zero helpers. A field that
// still cannot be decoded is left at its zero value.
func decode(input any, out any) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook:       looseHook,
	})
	if err != nil {
		return
	}
	_ = dec.Decode(input)
}

func looseHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return Number(data), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(data), nil
	case reflect.Bool:
		return Bool(data, false), nil
	case reflect.String:
		return String(data), nil
	case reflect.Ptr:
		if s, ok := data.(string); ok && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return data, nil
	case reflect.Slice, reflect.Map, reflect.Struct:
	default:
		return data, nil
	}

	switch from.Kind() {
	case reflect.String:
		return parseJSONText(reflect.ValueOf(data).String()), nil
	case reflect.Slice, reflect.Map:
		return data, nil
	}
	return nil, nil
}

func parseJSONText(text string) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil
	}
	return parsed
}

// Ingredients decodes a recipe field.
func Ingredients(v any) []domain.Ingredient {
	var out []domain.Ingredient
	decode(v, &out)
	if out == nil {
		return []domain.Ingredient{}
	}
	return out
}

// ScheduleData decodes a schedule grid. Rows are padded or cut to 7 days.
func ScheduleData(v any) map[string][]int {
	var raw map[string][]int
	decode(v, &raw)
	out := make(map[string][]int, len(raw))
	for sku, days := range raw {
		row := make([]int, 7)
		copy(row, days)
		out[sku] = row
	}
	return out
}

// Targets decodes a product -> batch target map.
func Targets(v any) map[string]int {
	var out map[string]int
	decode(v, &out)
	if out == nil {
		return map[string]int{}
	}
	return out
}

// Quantities decodes a material -> quantity map.
func Quantities(v any) map[string]float64 {
	var out map[string]float64
	decode(v, &out)
	if out == nil {
		return map[string]float64{}
	}
	return out
}

// PerSKU decodes a product -> material -> quantity map.
func PerSKU(v any) map[string]map[string]float64 {
	var out map[string]map[string]float64
	decode(v, &out)
	if out == nil {
		return map[string]map[string]float64{}
	}
	for sku, needs := range out {
		if needs == nil {
			out[sku] = map[string]float64{}
		}
	}
	return out
}

// Items decodes request order lines.
func Items(v any) []domain.RequestOrderItem {
	var out []domain.RequestOrderItem
	decode(v, &out)
	if out == nil {
		return []domain.RequestOrderItem{}
	}
	for i := range out {
		if out[i].Deliveries == nil {
			out[i].Deliveries = []domain.DeliveryBatch{}
		}
		if out[i].Status == "" {
			out[i].Status = domain.ItemPending
		}
	}
	return out
}
