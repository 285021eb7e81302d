package query

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/repairtrack/repairdb/schema"
	"github.com/repairtrack/repairdb/schema/field"
)

// Record is a returned row. Scalar values use the canonical types int64,
// float64, string, bool and time.Time (UTC), or nil for NULL. Loaded
// to-one relations hold a Record or nil, to-many relations a []Record,
// and relation counts a Record of int64 under "_count".
type Record map[string]any

// CountKey is the record key holding relation counts.
const CountKey = "_count"

// Int returns the integer value of field f, or zero.
func (r Record) Int(f string) int64 {
	v, _ := r[f].(int64)
	return v
}

// Float returns the float value of field f, or zero.
func (r Record) Float(f string) float64 {
	v, _ := r[f].(float64)
	return v
}

// String returns the string value of field f, or "".
func (r Record) String(f string) string {
	v, _ := r[f].(string)
	return v
}

// Bool returns the boolean value of field f.
func (r Record) Bool(f string) bool {
	v, _ := r[f].(bool)
	return v
}

// Time returns the time value of field f, or the zero time.
func (r Record) Time(f string) time.Time {
	v, _ := r[f].(time.Time)
	return v
}

// StringPtr returns the value of a nullable string field.
func (r Record) StringPtr(f string) *string {
	if v, ok := r[f].(string); ok {
		return &v
	}
	return nil
}

// IntPtr returns the value of a nullable integer field.
func (r Record) IntPtr(f string) *int64 {
	if v, ok := r[f].(int64); ok {
		return &v
	}
	return nil
}

// FloatPtr returns the value of a nullable float field.
func (r Record) FloatPtr(f string) *float64 {
	if v, ok := r[f].(float64); ok {
		return &v
	}
	return nil
}

// BoolPtr returns the value of a nullable boolean field.
func (r Record) BoolPtr(f string) *bool {
	if v, ok := r[f].(bool); ok {
		return &v
	}
	return nil
}

// TimePtr returns the value of a nullable time field.
func (r Record) TimePtr(f string) *time.Time {
	if v, ok := r[f].(time.Time); ok {
		return &v
	}
	return nil
}

// Has reports whether key k was returned.
func (r Record) Has(k string) bool {
	_, ok := r[k]
	return ok
}

// One returns a loaded to-one relation. The boolean reports whether the
// relation was loaded; the record is nil when no related row exists.
func (r Record) One(rel string) (Record, bool) {
	v, ok := r[rel]
	if !ok {
		return nil, false
	}
	rec, _ := v.(Record)
	return rec, true
}

// Many returns a loaded to-many relation.
func (r Record) Many(rel string) ([]Record, bool) {
	v, ok := r[rel]
	if !ok {
		return nil, false
	}
	recs, _ := v.([]Record)
	return recs, true
}

// Counts returns the relation counts, if requested.
func (r Record) Counts() Record {
	c, _ := r[CountKey].(Record)
	return c
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// NormalizeRecord converts every value of r to its canonical type,
// descending into loaded relations. It is applied to records decoded from
// a cache, where numeric widths and nested map types are not preserved.
func NormalizeRecord(m *schema.Model, r Record) (Record, error) {
	if r == nil {
		return nil, nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if f, ok := m.Field(k); ok {
			cv, err := ScanValue(f.Type, v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.Name, k, err)
			}
			out[k] = cv
			continue
		}
		if k == CountKey {
			counts, err := normalizeCounts(v)
			if err != nil {
				return nil, fmt.Errorf("%s._count: %w", m.Name, err)
			}
			out[k] = counts
			continue
		}
		rel, ok := m.Relation(k)
		if !ok {
			out[k] = v
			continue
		}
		nv, err := normalizeRelation(rel, v)
		if err != nil {
			return nil, err
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeRelation(rel *schema.Relation, v any) (any, error) {
	if rel.ToMany() {
		items, err := asList(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rel.Model.Name, rel.Name, err)
		}
		recs := make([]Record, 0, len(items))
		for _, it := range items {
			m, err := asMap(it)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", rel.Model.Name, rel.Name, err)
			}
			rec, err := NormalizeRecord(rel.Target, m)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
		return recs, nil
	}
	if v == nil {
		return Record(nil), nil
	}
	m, err := asMap(v)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", rel.Model.Name, rel.Name, err)
	}
	return NormalizeRecord(rel.Target, m)
}

func normalizeCounts(v any) (Record, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	out := make(Record, len(m))
	for k, c := range m {
		n, err := ScanValue(field.TypeInt, c)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

func asMap(v any) (Record, error) {
	switch v := v.(type) {
	case Record:
		return v, nil
	case map[string]any:
		return Record(v), nil
	case map[any]any:
		out := make(Record, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected key type %T", k)
			}
			out[ks] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected record type %T", v)
}

func asList(v any) ([]any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []Record:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected list type %T", v)
}

// Time layouts accepted when a driver returns timestamps as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ScanValue converts a value returned by a driver or decoded from a cache
// into the canonical type of t.
func ScanValue(t field.Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch t {
	case field.TypeInt:
		switch v := v.(type) {
		case string:
			return strconv.ParseInt(v, 10, 64)
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("non integral value %v for int field", v)
			}
			return int64(v), nil
		}
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case field.TypeFloat:
		switch v := v.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(v, 64)
		}
		if n, ok := toInt64(v); ok {
			return float64(n), nil
		}
	case field.TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case field.TypeTime:
		switch v := v.(type) {
		case time.Time:
			return v.UTC(), nil
		case string:
			for _, layout := range timeLayouts {
				if tm, err := time.Parse(layout, v); err == nil {
					return tm.UTC(), nil
				}
			}
			return nil, fmt.Errorf("cannot parse %q as time", v)
		}
	case field.TypeBool:
		switch v := v.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
		if n, ok := toInt64(v); ok {
			return n != 0, nil
		}
	}
	return nil, fmt.Errorf("unexpected %T value for %s field", v, t)
}

// InputValue checks a caller supplied value against the type of t and
// converts it to the canonical type. Unlike ScanValue it never parses
// strings.
func InputValue(t field.Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case field.TypeInt:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case field.TypeFloat:
		switch v := v.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}
		if n, ok := toInt64(v); ok {
			return float64(n), nil
		}
	case field.TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case field.TypeTime:
		if tm, ok := v.(time.Time); ok {
			return tm.UTC(), nil
		}
	case field.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", t, v)
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}
