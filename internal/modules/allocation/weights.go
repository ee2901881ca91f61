package allocation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Weight is a single key/percentage pair
type Weight struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Weights is an ordered set of sibling percentages.
// Key order is explicit and survives JSON round trips; every "first key" and
// "last key" rule in the engine refers to this order.
// The zero value is an empty set ready to use. Copies share storage, so Clone
// before mutating a set that another holder may still read.
type Weights struct {
	keys   []string
	values map[string]float64
}

// NewWeights builds a set from pairs in the given order. Repeated keys keep their
// first position and take the last value.
func NewWeights(pairs ...Weight) Weights {
	var w Weights
	for _, p := range pairs {
		w.Set(p.Key, p.Value)
	}
	return w
}

// Len returns the number of keys
func (w Weights) Len() int {
	return len(w.keys)
}

// Keys returns the keys in order
func (w Weights) Keys() []string {
	out := make([]string, len(w.keys))
	copy(out, w.keys)
	return out
}

// Has reports whether key is present
func (w Weights) Has(key string) bool {
	_, ok := w.values[key]
	return ok
}

// Get returns the value for key and whether it is present
func (w Weights) Get(key string) (float64, bool) {
	v, ok := w.values[key]
	return v, ok
}

// Value returns the value for key, or 0 when absent
func (w Weights) Value(key string) float64 {
	return w.values[key]
}

// Set assigns a value. New keys are appended to the end of the order.
func (w *Weights) Set(key string, value float64) {
	if w.values == nil {
		w.values = make(map[string]float64)
	}
	if _, ok := w.values[key]; !ok {
		w.keys = append(w.keys, key)
	}
	w.values[key] = value
}

// Delete removes key, keeping the order of the rest
func (w *Weights) Delete(key string) {
	if _, ok := w.values[key]; !ok {
		return
	}
	delete(w.values, key)
	for i, k := range w.keys {
		if k == key {
			w.keys = append(w.keys[:i:i], w.keys[i+1:]...)
			break
		}
	}
}

// Entries returns the pairs in order
func (w Weights) Entries() []Weight {
	out := make([]Weight, len(w.keys))
	for i, k := range w.keys {
		out[i] = Weight{Key: k, Value: w.values[k]}
	}
	return out
}

// Sum returns the total of all values
func (w Weights) Sum() float64 {
	if len(w.keys) == 0 {
		return 0
	}
	vals := make([]float64, len(w.keys))
	for i, k := range w.keys {
		vals[i] = w.values[k]
	}
	return floats.Sum(vals)
}

// Clone returns a deep copy
func (w Weights) Clone() Weights {
	var out Weights
	for _, k := range w.keys {
		out.Set(k, w.values[k])
	}
	return out
}

// Equal reports whether both sets hold the same keys, order and values
func (w Weights) Equal(other Weights) bool {
	if len(w.keys) != len(other.keys) {
		return false
	}
	for i, k := range w.keys {
		if other.keys[i] != k || other.values[k] != w.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON writes an object whose keys follow the set's order
func (w Weights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range w.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(w.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode weight %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping its document key order. null yields an empty set.
func (w *Weights) UnmarshalJSON(data []byte) error {
	*w = Weights{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode weights: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to decode weights: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode weights: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("failed to decode weights: unexpected key %v", tok)
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to decode weight %q: %w", key, err)
		}
		w.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode weights: %w", err)
	}
	return nil
}
