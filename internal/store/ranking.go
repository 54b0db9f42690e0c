package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// TopLimit is the number of rows kept in each frequency table.
const TopLimit = 10

// Count is one row of a frequency table.
type Count struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Ranking is a frequency table, most frequent first. It encodes as a JSON
// object whose key order is the ranking order.
type Ranking []Count

// Rank counts values and returns at most limit rows, most frequent first.
// Ties keep the order in which values were first seen. limit <= 0 keeps all.
func Rank(values []string, limit int) Ranking {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	r := make(Ranking, 0, len(order))
	for _, v := range order {
		r = append(r, Count{Value: v, Count: counts[v]})
	}
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].Count > r[j].Count
	})
	if limit > 0 && len(r) > limit {
		r = r[:limit]
	}
	return r
}

// MarshalJSON implements json.Marshaler.
func (r Ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", c.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order.
func (r *Ranking) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*r = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ranking: expected object, got %v", tok)
	}

	out := Ranking{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("ranking: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ranking: expected key, got %v", keyTok)
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("ranking: value for %q: %w", key, err)
		}
		out = append(out, Count{Value: key, Count: n})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	*r = out
	return nil
}
