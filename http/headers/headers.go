// Package headers implements the header field collection: an ordered multimap preserving
// duplicates, insertion order and the original casing of both names and values. Names are
// compared case-insensitively.
package headers

import (
	"errors"
	"iter"
	"slices"

	"github.com/dreamsmith-workshop/multiverse/internal/grammar"
	"github.com/dreamsmith-workshop/multiverse/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

var (
	ErrInvalidName  = errors.New("header field name is not a token")
	ErrInvalidValue = errors.New("header field value contains a disallowed character")
)

// Field is a single header field line.
type Field struct {
	Name, Value string
}

// Headers stores fields in a slice and looks them up linearly, which is faster than a map on
// the number of fields a message normally has. The zero value is ready to use.
type Headers struct {
	fields []Field
}

func New() *Headers {
	return new(Headers)
}

// NewPrealloc returns an instance with pre-allocated space for n fields.
func NewPrealloc(n int) *Headers {
	return &Headers{
		fields: make([]Field, 0, n),
	}
}

// From builds a collection out of the fields, validating each of them.
func From(fields ...Field) (*Headers, error) {
	h := NewPrealloc(len(fields))

	for _, f := range fields {
		if err := h.Add(f.Name, f.Value); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Add appends a new field. Existing fields of the same name are never overwritten. Leading and
// trailing whitespace of the value is stripped.
func (h *Headers) Add(name, value string) error {
	if !grammar.IsTokenString(name) {
		return ErrInvalidName
	}

	value = strutil.StripWS(value)
	if !grammar.IsFieldValue(value) {
		return ErrInvalidValue
	}

	h.fields = append(h.fields, Field{
		Name:  name,
		Value: value,
	})

	return nil
}

// Value returns the first value corresponding to the name. Otherwise, empty string is returned.
func (h *Headers) Value(name string) string {
	value, _ := h.Get(name)
	return value
}

// Get returns the first value and a bool, indicating whether the value was found.
func (h *Headers) Get(name string) (value string, found bool) {
	for _, field := range h.fields {
		if strcomp.EqualFold(name, field.Name) {
			return field.Value, true
		}
	}

	return "", false
}

// Values returns all the values of the name in the order they were added. The returned slice
// is never nil and is owned by the caller.
func (h *Headers) Values(name string) []string {
	values := make([]string, 0, 1)

	for _, field := range h.fields {
		if strcomp.EqualFold(name, field.Name) {
			values = append(values, field.Value)
		}
	}

	return values
}

// Count returns how many fields with the name are presented.
func (h *Headers) Count(name string) (n int) {
	for _, field := range h.fields {
		if strcomp.EqualFold(name, field.Name) {
			n++
		}
	}

	return n
}

// Has indicates, whether there's a field with the name.
func (h *Headers) Has(name string) bool {
	_, found := h.Get(name)
	return found
}

// Keys returns all unique names in order of their first appearance.
func (h *Headers) Keys() []string {
	var unique []string

	for _, field := range h.fields {
		if !contains(unique, field.Name) {
			unique = append(unique, field.Name)
		}
	}

	return unique
}

// All iterates over the fields in their original order.
func (h *Headers) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, field := range h.fields {
			if !yield(field.Name, field.Value) {
				break
			}
		}
	}
}

// Fields returns a copy of the underlying fields, or nil if there are none.
func (h *Headers) Fields() []Field {
	if len(h.fields) == 0 {
		return nil
	}

	return slices.Clone(h.fields)
}

// Len returns a number of stored fields.
func (h *Headers) Len() int {
	return len(h.fields)
}

func (h *Headers) Empty() bool {
	return h.Len() == 0
}

// Clone creates a deep copy.
func (h *Headers) Clone() *Headers {
	return &Headers{
		fields: slices.Clone(h.fields),
	}
}

// Equal reports whether both collections contain exactly the same fields in the same order.
// Names are compared case-insensitively, values byte-wise.
func (h *Headers) Equal(other *Headers) bool {
	return slices.EqualFunc(h.fields, other.fields, func(a, b Field) bool {
		return strcomp.EqualFold(a.Name, b.Name) && a.Value == b.Value
	})
}

func contains(collection []string, name string) bool {
	for _, element := range collection {
		if strcomp.EqualFold(element, name) {
			return true
		}
	}

	return false
}
