// Package candidate holds the records submitted for classification and the verdicts
// that come back.
package candidate

import (
	"encoding/json"
	"sort"
)

// MissionKey is the request field that carries the mission alongside the features.
const MissionKey = "mission"

// Record is one transit candidate: feature name to value, tagged with its mission.
// Mission may be empty for batch rows whose header matches no known mission.
type Record struct {
	Mission string
	Values  map[string]Value
}

// NewRecord returns an empty record for mission.
func NewRecord(mission string) Record {
	return Record{Mission: mission, Values: make(map[string]Value)}
}

// Get returns the value for name, unset if absent.
func (r Record) Get(name string) Value {
	return r.Values[name]
}

// Float is a convenience for numeric features.
func (r Record) Float(name string) (float64, bool) {
	return r.Values[name].Float()
}

// Clone returns a deep copy; submitted records are frozen this way.
func (r Record) Clone() Record {
	out := Record{Mission: r.Mission, Values: make(map[string]Value, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// With returns a copy of r with name set to v.
func (r Record) With(name string, v Value) Record {
	out := r.Clone()
	out.Values[name] = v
	return out
}

// Names returns the set feature names in lexical order.
func (r Record) Names() []string {
	names := make([]string, 0, len(r.Values))
	for k, v := range r.Values {
		if v.IsSet() {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the flat request shape: {"mission": ..., "<feature>": value, ...}.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(r.Values)+1)
	for k, v := range r.Values {
		if v.IsSet() {
			flat[k] = v
		}
	}
	if r.Mission != "" {
		flat[MissionKey] = r.Mission
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts the flat shape produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]Value
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*r = NewRecord("")
	for k, v := range flat {
		if k == MissionKey {
			r.Mission = v.String()
			continue
		}
		if v.IsSet() {
			r.Values[k] = v
		}
	}
	return nil
}
