package nnsyntax

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dekarrin/thingtalk/syntax"
)

// file entity.go contains the entity value model: the typed values carried
// by placeholder names, the registry of placeholder kinds, kind-specific
// equality, and display-string projection.

// MeasureEntity is the bag value of MEASURE_* and DURATION placeholders.
type MeasureEntity struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// LocationEntity is the bag value of LOCATION placeholders. An unresolved
// location carries NaN coordinates; by IEEE semantics NaN never equals a
// numeric coordinate, so unresolved entities can only match other
// unresolved entities (via display comparison).
type LocationEntity struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Display   string  `json:"display,omitempty"`
}

// Unresolved returns whether the location has no usable coordinates.
func (l LocationEntity) Unresolved() bool {
	return math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude)
}

// TimeEntity is the bag value of TIME placeholders.
type TimeEntity struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// DateEntity is the partially-specified form of a DATE bag value.
// Components that were not specified are -1.
type DateEntity struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Time resolves the date entity to a concrete UTC time. Unset time-of-day
// components resolve to zero; unset date components resolve to the zero
// epoch component.
func (d DateEntity) Time() time.Time {
	year, month, day := d.Year, d.Month, d.Day
	if year < 0 {
		year = 1970
	}
	if month < 0 {
		month = 1
	}
	if day < 0 {
		day = 1
	}
	h, m, s := d.Hour, d.Minute, d.Second
	if h < 0 {
		h = 0
	}
	if m < 0 {
		m = 0
	}
	if s < 0 {
		s = 0
	}
	return time.Date(year, time.Month(month), day, h, m, s, 0, time.UTC)
}

// CurrencyEntity is the bag value of CURRENCY placeholders.
type CurrencyEntity struct {
	Code  string  `json:"unit"`
	Value float64 `json:"value"`
}

// GenericEntity is the bag value of GENERIC_ENTITY_* placeholders. Value
// may be empty when only the display name is known.
type GenericEntity struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
}

// EntityMap is a bag of entities: a mapping from placeholder names of the
// shape <KIND>_<n> to entity values. Values are one of the entity structs
// above, a plain string, a float64, or a time.Time.
type EntityMap map[string]any

// Copy returns a shallow copy of the bag.
func (em EntityMap) Copy() EntityMap {
	out := make(EntityMap, len(em))
	for k, v := range em {
		out[k] = v
	}
	return out
}

var placeholderPat = regexp.MustCompile(`^(.+?)_([0-9]+)$`)

// entityKindOf splits a placeholder name into its kind and its number.
// GENERIC_ENTITY keeps its entity type as part of the kind, so
// "GENERIC_ENTITY_tt:device_0" has kind "GENERIC_ENTITY_tt:device".
func entityKindOf(name string) (kind string, num int, ok bool) {
	m := placeholderPat.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// stringLikeKind returns whether values of the kind can be written inline
// as a quoted string in the token sequence.
func stringLikeKind(kind string) bool {
	switch kind {
	case TermQuotedString, TermHashtag, TermUsername, TermLocation, TermPicture,
		TermURL, TermPhoneNumber, TermEmailAddress, TermPathName:
		return true
	}
	return strings.HasPrefix(kind, "GENERIC_ENTITY_")
}

// entityTypeOfKind maps the simple string-entity kinds to their Thingpedia
// entity type.
func entityTypeOfKind(kind string) string {
	switch kind {
	case TermHashtag:
		return "tt:hashtag"
	case TermUsername:
		return "tt:username"
	case TermURL:
		return "tt:url"
	case TermPhoneNumber:
		return "tt:phone_number"
	case TermEmailAddress:
		return "tt:email_address"
	case TermPathName:
		return "tt:path_name"
	case TermPicture:
		return "tt:picture"
	}
	return strings.TrimPrefix(kind, "GENERIC_ENTITY_")
}

// entitiesEqual is the kind-specific equality predicate over bag values.
func entitiesEqual(kind string, a, b any) bool {
	switch {
	case kind == TermCurrency:
		ca, aok := a.(CurrencyEntity)
		cb, bok := b.(CurrencyEntity)
		return aok && bok && ca.Code == cb.Code && ca.Value == cb.Value
	case kind == TermDuration || strings.HasPrefix(kind, "MEASURE_"):
		ma, aok := a.(MeasureEntity)
		mb, bok := b.(MeasureEntity)
		return aok && bok && ma.Unit == mb.Unit && ma.Value == mb.Value
	case kind == TermTime:
		ta, aok := a.(TimeEntity)
		tb, bok := b.(TimeEntity)
		return aok && bok && ta.Hour == tb.Hour && ta.Minute == tb.Minute && ta.Second == tb.Second
	case kind == TermDate:
		ta, aok := asTime(a)
		tb, bok := asTime(b)
		return aok && bok && ta.UnixMilli() == tb.UnixMilli()
	case kind == TermLocation:
		la, aok := a.(LocationEntity)
		lb, bok := b.(LocationEntity)
		if !aok || !bok {
			return false
		}
		if la.Unresolved() && lb.Unresolved() {
			return la.Display == lb.Display
		}
		return math.Abs(la.Latitude-lb.Latitude) < 0.01 && math.Abs(la.Longitude-lb.Longitude) < 0.01
	case strings.HasPrefix(kind, "GENERIC_ENTITY_"):
		ga, aok := a.(GenericEntity)
		gb, bok := b.(GenericEntity)
		if !aok || !bok {
			return false
		}
		if ga.Value == "" && gb.Value == "" {
			return ga.Display == gb.Display
		}
		return ga.Value == gb.Value
	case kind == TermNumber:
		na, aok := a.(float64)
		nb, bok := b.(float64)
		return aok && bok && na == nb
	default:
		sa, aok := a.(string)
		sb, bok := b.(string)
		return aok && bok && sa == sb
	}
}

func asTime(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case DateEntity:
		return d.Time(), true
	case string:
		t, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// displayString projects a bag value to the string the user would have said
// for it, used for sentence matching. It returns "" for kinds that have no
// spoken form.
func displayString(v any) string {
	switch e := v.(type) {
	case string:
		return e
	case GenericEntity:
		return e.Display
	case LocationEntity:
		return e.Display
	case float64:
		return strconv.FormatFloat(e, 'f', -1, 64)
	}
	return ""
}

// valueToEntity projects an AST value to the canonical bag value for the
// given placeholder kind. It reports false when the value is not of a shape
// the kind can carry.
func valueToEntity(kind string, v syntax.Value) (any, bool) {
	switch {
	case kind == TermQuotedString:
		sv, ok := v.(syntax.StringValue)
		if !ok {
			return nil, false
		}
		return sv.Value, true
	case kind == TermNumber:
		nv, ok := v.(syntax.NumberValue)
		if !ok {
			return nil, false
		}
		return nv.Value, true
	case kind == TermCurrency:
		cv, ok := v.(syntax.CurrencyValue)
		if !ok {
			return nil, false
		}
		return CurrencyEntity{Code: cv.Code, Value: cv.Value}, true
	case kind == TermTime:
		tv, ok := v.(syntax.TimeValue)
		if !ok || tv.Value.Kind != syntax.TimeAbsolute {
			return nil, false
		}
		return TimeEntity{Hour: tv.Value.Hour, Minute: tv.Value.Minute, Second: tv.Value.Second}, true
	case kind == TermDate:
		dv, ok := v.(syntax.DateValue)
		if !ok || dv.Value.Kind != syntax.DateAbsolute {
			return nil, false
		}
		return dv.Value.Abs, true
	case kind == TermLocation:
		lv, ok := v.(syntax.LocationValue)
		if !ok {
			return nil, false
		}
		switch lv.Value.Kind {
		case syntax.LocationAbsolute:
			return LocationEntity{Latitude: lv.Value.Lat, Longitude: lv.Value.Lon, Display: lv.Value.Display}, true
		case syntax.LocationUnresolved:
			return LocationEntity{Latitude: math.NaN(), Longitude: math.NaN(), Display: lv.Value.Name}, true
		}
		return nil, false
	case kind == TermDuration || strings.HasPrefix(kind, "MEASURE_"):
		mv, ok := v.(syntax.MeasureValue)
		if !ok {
			return nil, false
		}
		return MeasureEntity{Unit: mv.Unit, Value: mv.Value}, true
	case strings.HasPrefix(kind, "GENERIC_ENTITY_"):
		ev, ok := v.(syntax.EntityValue)
		if !ok {
			return nil, false
		}
		return GenericEntity{Value: ev.Value, Display: ev.Display}, true
	default:
		// the simple string-entity kinds (USERNAME, HASHTAG, ...)
		ev, ok := v.(syntax.EntityValue)
		if ok {
			return ev.Value, true
		}
		sv, ok := v.(syntax.StringValue)
		if !ok {
			return nil, false
		}
		return sv.Value, true
	}
}

// ParseEntityValue converts the JSON shape of a bag value (as produced by
// the sentence tokenizer or a dataset file) to the typed form this package
// uses. The placeholder name determines which shape is expected.
func ParseEntityValue(name string, raw any) (any, error) {
	kind, _, ok := entityKindOf(name)
	if !ok {
		return nil, fmt.Errorf("malformed placeholder name: %q", name)
	}

	switch {
	case kind == TermNumber:
		n, ok := asFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%s: expected a number, got %T", name, raw)
		}
		return n, nil
	case kind == TermCurrency:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an object, got %T", name, raw)
		}
		val, _ := asFloat(m["value"])
		code, _ := m["unit"].(string)
		return CurrencyEntity{Code: code, Value: val}, nil
	case kind == TermDuration || strings.HasPrefix(kind, "MEASURE_"):
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an object, got %T", name, raw)
		}
		val, _ := asFloat(m["value"])
		unit, _ := m["unit"].(string)
		return MeasureEntity{Unit: unit, Value: val}, nil
	case kind == TermTime:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an object, got %T", name, raw)
		}
		h, _ := asFloat(m["hour"])
		mi, _ := asFloat(m["minute"])
		s, _ := asFloat(m["second"])
		return TimeEntity{Hour: int(h), Minute: int(mi), Second: int(s)}, nil
	case kind == TermDate:
		switch d := raw.(type) {
		case string:
			t, err := time.Parse(time.RFC3339, d)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return t.UTC(), nil
		case time.Time:
			return d.UTC(), nil
		case map[string]any:
			de := DateEntity{Year: -1, Month: -1, Day: -1, Hour: -1, Minute: -1, Second: -1}
			if y, ok := asFloat(d["year"]); ok {
				de.Year = int(y)
			}
			if mo, ok := asFloat(d["month"]); ok {
				de.Month = int(mo)
			}
			if dd, ok := asFloat(d["day"]); ok {
				de.Day = int(dd)
			}
			if h, ok := asFloat(d["hour"]); ok {
				de.Hour = int(h)
			}
			if mi, ok := asFloat(d["minute"]); ok {
				de.Minute = int(mi)
			}
			if s, ok := asFloat(d["second"]); ok {
				de.Second = int(s)
			}
			return de, nil
		}
		return nil, fmt.Errorf("%s: expected a date, got %T", name, raw)
	case kind == TermLocation:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an object, got %T", name, raw)
		}
		loc := LocationEntity{Latitude: math.NaN(), Longitude: math.NaN()}
		if lat, ok := asFloat(m["latitude"]); ok {
			loc.Latitude = lat
		}
		if lon, ok := asFloat(m["longitude"]); ok {
			loc.Longitude = lon
		}
		if disp, ok := m["display"].(string); ok {
			loc.Display = disp
		}
		return loc, nil
	case strings.HasPrefix(kind, "GENERIC_ENTITY_"):
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected an object, got %T", name, raw)
		}
		ge := GenericEntity{}
		if v, ok := m["value"].(string); ok {
			ge.Value = v
		}
		if d, ok := m["display"].(string); ok {
			ge.Display = d
		}
		return ge, nil
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected a string, got %T", name, raw)
		}
		return s, nil
	}
}

// ParseEntityMap converts a whole JSON-shaped bag at once.
func ParseEntityMap(raw map[string]any) (EntityMap, error) {
	out := make(EntityMap, len(raw))
	for name, v := range raw {
		parsed, err := ParseEntityValue(name, v)
		if err != nil {
			return nil, err
		}
		out[name] = parsed
	}
	return out, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
