package viewstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/hub-portal/internal/domain"
)

// FilterKind tipo de valor de un filtro.
type FilterKind string

const (
	FilterSingle FilterKind = "value"
	FilterSet    FilterKind = "set"
	FilterRange  FilterKind = "range"
)

const dateLayout = "2006-01-02"

// FilterValue exactamente uno de: texto único, conjunto de textos o rango de fechas {from,to}.
type FilterValue struct {
	Kind   FilterKind `json:"kind"`
	Value  string     `json:"value,omitempty"`
	Values []string   `json:"values,omitempty"`
	From   string     `json:"from,omitempty"`
	To     string     `json:"to,omitempty"`
}

// Single filtro de valor único.
func Single(v string) FilterValue { return FilterValue{Kind: FilterSingle, Value: v} }

// Set filtro de conjunto.
func Set(values ...string) FilterValue { return FilterValue{Kind: FilterSet, Values: values} }

// Range filtro de rango de fechas (YYYY-MM-DD; cualquiera de los extremos puede omitirse).
func Range(from, to string) FilterValue { return FilterValue{Kind: FilterRange, From: from, To: to} }

// Validate comprueba la forma del filtro.
func (f FilterValue) Validate() error {
	switch f.Kind {
	case FilterSingle:
		if len(f.Values) > 0 || f.From != "" || f.To != "" {
			return fmt.Errorf("%w: filtro de valor con campos de otro tipo", domain.ErrInvalidInput)
		}
	case FilterSet:
		if f.Value != "" || f.From != "" || f.To != "" {
			return fmt.Errorf("%w: filtro de conjunto con campos de otro tipo", domain.ErrInvalidInput)
		}
	case FilterRange:
		if f.Value != "" || len(f.Values) > 0 {
			return fmt.Errorf("%w: filtro de rango con campos de otro tipo", domain.ErrInvalidInput)
		}
		var from, to time.Time
		var err error
		if f.From != "" {
			if from, err = time.Parse(dateLayout, f.From); err != nil {
				return fmt.Errorf("%w: fecha 'from' inválida", domain.ErrInvalidInput)
			}
		}
		if f.To != "" {
			if to, err = time.Parse(dateLayout, f.To); err != nil {
				return fmt.Errorf("%w: fecha 'to' inválida", domain.ErrInvalidInput)
			}
		}
		if f.From != "" && f.To != "" && to.Before(from) {
			return fmt.Errorf("%w: rango invertido", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: tipo de filtro %q desconocido", domain.ErrInvalidInput, f.Kind)
	}
	return nil
}

// IsEmpty un filtro vacío equivale a no tener restricción.
func (f FilterValue) IsEmpty() bool {
	switch f.Kind {
	case FilterSingle:
		return strings.TrimSpace(f.Value) == ""
	case FilterSet:
		for _, v := range f.Values {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	case FilterRange:
		return f.From == "" && f.To == ""
	}
	return true
}

func (f FilterValue) normalized() FilterValue {
	switch f.Kind {
	case FilterSingle:
		return Single(strings.TrimSpace(f.Value))
	case FilterSet:
		return FilterValue{Kind: FilterSet, Values: uniqueStrings(f.Values)}
	}
	return f
}

// canonical representación estable para QueryKey (los conjuntos se ordenan).
func (f FilterValue) canonical() string {
	switch f.Kind {
	case FilterSet:
		vals := append([]string(nil), f.Values...)
		sort.Strings(vals)
		return "{" + quoteAll(vals) + "}"
	case FilterRange:
		return "[" + strconv.Quote(f.From) + ".." + strconv.Quote(f.To) + "]"
	}
	return strconv.Quote(f.Value)
}

// UnmarshalJSON acepta la forma tipada y las formas heredadas del front-end:
// "texto", ["a","b"] y {"from":"...","to":"..."}.
func (f *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FilterValue{Kind: FilterSingle}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Single(s)
		return nil
	case '[':
		var vals []string
		if err := json.Unmarshal(data, &vals); err != nil {
			return err
		}
		*f = Set(vals...)
		return nil
	}
	type typed FilterValue
	var t typed
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t.Kind == "" {
		t.Kind = FilterRange
	}
	*f = FilterValue(t)
	return nil
}
