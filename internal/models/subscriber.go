package models

import "encoding/json"

// Filter is a subscriber-owned keyword rule with its own capped story list.
//
// The worker reads Name and Keywords and rewrites only NewsStories. Every
// other field the web tier stores (enableAlert, alertFrequency, deleteTime,
// timeOfLastScan, keywordsStr, ...) is kept in Extra with its stored type,
// so writing the filters back leaves those fields as they were.
type Filter struct {
	Name        string                 `bson:"name" json:"name"`
	Keywords    []string               `bson:"keyWords" json:"keyWords"`
	NewsStories []Story                `bson:"newsStories" json:"newsStories"`
	Extra       map[string]interface{} `bson:",inline" json:"-"`
}

// filterFields mirrors Filter without its methods.
type filterFields Filter

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
func (f *Filter) UnmarshalJSON(b []byte) error {
	var known filterFields
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range []string{"name", "keyWords", "newsStories"} {
		delete(all, k)
	}
	if len(all) > 0 {
		known.Extra = all
	}
	*f = Filter(known)
	return nil
}

// MarshalJSON writes Extra alongside the known fields.
func (f Filter) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(filterFields(f))
	if err != nil || len(f.Extra) == 0 {
		return b, err
	}
	out := make(map[string]json.RawMessage, len(f.Extra)+3)
	for k, v := range f.Extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		out[k] = v
	}
	return json.Marshal(out)
}

// Subscriber is a user record as far as the worker cares about it.
type Subscriber struct {
	ID          string   `bson:"_id,omitempty" json:"_id"`
	Type        string   `bson:"type" json:"type"`
	DisplayName string   `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email       string   `bson:"email,omitempty" json:"email,omitempty"`
	Filters     []Filter `bson:"newsFilters" json:"newsFilters"`
}
