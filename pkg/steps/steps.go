// Package steps holds the accumulated data of the multi-step document
// preparation wizard. The collection lives in memory for the lifetime
// of a document session and is pushed to the backend as a whole on
// every unsuppressed mutation.
package steps

import "sort"

// StepRecord is one wizard entry keyed by step number. Data is either
// a JSON object (map[string]any) or a JSON array ([]any).
type StepRecord struct {
	Step int `json:"step"`
	Data any `json:"data"`
}

// Steps is the ordered collection. Invariant: at most one record per
// step value.
type Steps []StepRecord

// Get returns the record's data for step, or nil if absent.
func (s Steps) Get(step int) any {
	for _, r := range s {
		if r.Step == step {
			return r.Data
		}
	}
	return nil
}

// ToIndexMap converts the ordered collection into its interchangeable
// mapping form, keyed by array index.
func (s Steps) ToIndexMap() map[int]StepRecord {
	out := make(map[int]StepRecord, len(s))
	for i, r := range s {
		out[i] = r
	}
	return out
}

// FromIndexMap rebuilds the ordered collection from its mapping form.
func FromIndexMap(m map[int]StepRecord) Steps {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make(Steps, 0, len(m))
	for _, i := range idx {
		out = append(out, m[i])
	}
	return out
}

// clone returns a copy deep enough that merging never aliases caller
// state at the top level.
func (s Steps) clone() Steps {
	out := make(Steps, len(s))
	copy(out, s)
	return out
}

// MergeData combines an existing step payload with an incoming one.
// Objects merge shallowly with the incoming value winning key by key;
// arrays concatenate without deduplication, so repeated saves of the
// same list will duplicate entries. Anything else, including a type
// change, is replaced by the incoming payload.
func MergeData(existing, incoming any) any {
	switch inc := incoming.(type) {
	case map[string]any:
		ex, ok := existing.(map[string]any)
		if !ok {
			return copyObject(inc)
		}
		out := make(map[string]any, len(ex)+len(inc))
		for k, v := range ex {
			out[k] = v
		}
		for k, v := range inc {
			out[k] = v
		}
		return out
	case []any:
		ex, ok := existing.([]any)
		if !ok {
			return append([]any(nil), inc...)
		}
		out := make([]any, 0, len(ex)+len(inc))
		out = append(out, ex...)
		out = append(out, inc...)
		return out
	default:
		return incoming
	}
}

func copyObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// merge returns a new collection with data merged into the record for
// step, creating the record if absent.
func (s Steps) merge(step int, data any) Steps {
	out := s.clone()
	for i := range out {
		if out[i].Step == step {
			out[i] = StepRecord{Step: step, Data: MergeData(out[i].Data, data)}
			return out
		}
	}
	return append(out, StepRecord{Step: step, Data: MergeData(nil, data)})
}
