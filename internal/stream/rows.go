package stream

import (
	"encoding/json"
	"sort"

	"github.com/shoalstore/shoal-go/internal/errs"
)

// RowShape selects how much post-processing a value payload receives
// before delivery.
type RowShape int

const (
	// ShapeRaw passes the payload through unmodified.
	ShapeRaw RowShape = iota

	// ShapeSearch expands the structured sub-fields of a search hit:
	// locations are wrapped in a RowLocations accessor, and fields and
	// explanation are re-parsed when the server sent them as JSON-encoded
	// strings.
	ShapeSearch
)

// Row is a decoded stream row. For ShapeRaw only Raw is populated; for
// ShapeSearch the typed fields are filled from the payload and Raw holds
// the payload as received.
type Row struct {
	Raw map[string]any

	Index       string
	ID          string
	Score       float64
	Locations   *RowLocations
	Fragments   map[string][]string
	Fields      map[string]any
	Explanation map[string]any
}

// decodeRow applies the shape policy to a raw value payload.
func decodeRow(payload map[string]any, shape RowShape) (*Row, error) {
	if shape == ShapeRaw {
		return &Row{Raw: payload}, nil
	}

	row := &Row{Raw: payload}

	if v, ok := payload["index"].(string); ok {
		row.Index = v
	}
	if v, ok := payload["id"].(string); ok {
		row.ID = v
	}
	if v, ok := payload["score"].(float64); ok {
		row.Score = v
	}

	if raw, ok := payload["locations"]; ok && raw != nil {
		locs, err := NewRowLocations(raw)
		if err != nil {
			return nil, err
		}
		row.Locations = locs
	}

	if raw, ok := payload["fragments"].(map[string]any); ok {
		row.Fragments = make(map[string][]string, len(raw))
		for field, vals := range raw {
			items, ok := vals.([]any)
			if !ok {
				continue
			}
			frags := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					frags = append(frags, s)
				}
			}
			row.Fragments[field] = frags
		}
	}

	fields, err := structuredField(payload, "fields")
	if err != nil {
		return nil, err
	}
	row.Fields = fields

	explanation, err := structuredField(payload, "explanation")
	if err != nil {
		return nil, err
	}
	row.Explanation = explanation

	return row, nil
}

// structuredField returns payload[key] as a map, re-parsing it when the
// server sent it as a JSON-encoded string. Absent keys yield nil.
func structuredField(payload map[string]any, key string) (map[string]any, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return nil, errs.Wrap(errs.ErrKindInternal,
				"row field "+key+" is not valid JSON", err)
		}
		return parsed, nil
	default:
		return nil, errs.Newf(errs.ErrKindInternal,
			"row field %s has unexpected type %T", key, raw)
	}
}

// Location is a single term occurrence inside a matched field.
type Location struct {
	Field          string
	Term           string
	Position       uint32
	Start          uint32
	End            uint32
	ArrayPositions []uint32
}

// RowLocations provides lookup over the term locations of a search hit.
type RowLocations struct {
	// field -> term -> occurrences
	byField map[string]map[string][]Location
}

// NewRowLocations parses the wire representation of a hit's locations:
// a field -> term -> occurrence-list mapping.
func NewRowLocations(raw any) (*RowLocations, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, errs.Newf(errs.ErrKindInternal,
			"row locations have unexpected type %T", raw)
	}

	byField := make(map[string]map[string][]Location, len(fields))
	for field, rawTerms := range fields {
		terms, ok := rawTerms.(map[string]any)
		if !ok {
			return nil, errs.Newf(errs.ErrKindInternal,
				"locations for field %s have unexpected type %T", field, rawTerms)
		}

		byTerm := make(map[string][]Location, len(terms))
		for term, rawOccs := range terms {
			occs, ok := rawOccs.([]any)
			if !ok {
				return nil, errs.Newf(errs.ErrKindInternal,
					"locations for term %s have unexpected type %T", term, rawOccs)
			}

			locs := make([]Location, 0, len(occs))
			for _, rawOcc := range occs {
				occ, ok := rawOcc.(map[string]any)
				if !ok {
					continue
				}
				loc := Location{Field: field, Term: term}
				if v, ok := occ["pos"].(float64); ok {
					loc.Position = uint32(v)
				}
				if v, ok := occ["start"].(float64); ok {
					loc.Start = uint32(v)
				}
				if v, ok := occ["end"].(float64); ok {
					loc.End = uint32(v)
				}
				if aps, ok := occ["array_positions"].([]any); ok {
					loc.ArrayPositions = make([]uint32, 0, len(aps))
					for _, ap := range aps {
						if v, ok := ap.(float64); ok {
							loc.ArrayPositions = append(loc.ArrayPositions, uint32(v))
						}
					}
				}
				locs = append(locs, loc)
			}
			byTerm[term] = locs
		}
		byField[field] = byTerm
	}

	return &RowLocations{byField: byField}, nil
}

// GetAll returns every location of the hit.
func (l *RowLocations) GetAll() []Location {
	var all []Location
	for _, terms := range l.byField {
		for _, locs := range terms {
			all = append(all, locs...)
		}
	}
	return all
}

// Get returns the locations of term within field.
func (l *RowLocations) Get(field, term string) []Location {
	return l.byField[field][term]
}

// Fields returns the matched field names, sorted.
func (l *RowLocations) Fields() []string {
	fields := make([]string, 0, len(l.byField))
	for field := range l.byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Terms returns the distinct matched terms across all fields, sorted.
func (l *RowLocations) Terms() []string {
	seen := make(map[string]bool)
	for _, terms := range l.byField {
		for term := range terms {
			seen[term] = true
		}
	}
	out := make([]string, 0, len(seen))
	for term := range seen {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// TermsFor returns the matched terms within one field, sorted.
func (l *RowLocations) TermsFor(field string) []string {
	terms := make([]string, 0, len(l.byField[field]))
	for term := range l.byField[field] {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
