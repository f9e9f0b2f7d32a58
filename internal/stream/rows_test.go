package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRow_RawShapePassesThrough(t *testing.T) {
	payload := map[string]any{"anything": []any{"goes"}, "fields": "left alone"}

	row, err := decodeRow(payload, ShapeRaw)
	require.NoError(t, err)

	assert.Equal(t, payload, row.Raw)
	assert.Nil(t, row.Fields)
	assert.Nil(t, row.Locations)
}

func TestDecodeRow_SearchShape(t *testing.T) {
	payload := map[string]any{
		"index": "hotels_idx",
		"id":    "hotel-221",
		"score": 0.87,
		"locations": map[string]any{
			"description": map[string]any{
				"ocean": []any{
					map[string]any{"pos": float64(3), "start": float64(14), "end": float64(19)},
				},
			},
		},
		"fragments": map[string]any{
			"description": []any{"…the <mark>ocean</mark> view…"},
		},
		"fields":      `{"name":"Seaside Inn","stars":4}`,
		"explanation": map[string]any{"value": 0.87},
	}

	row, err := decodeRow(payload, ShapeSearch)
	require.NoError(t, err)

	assert.Equal(t, "hotels_idx", row.Index)
	assert.Equal(t, "hotel-221", row.ID)
	assert.Equal(t, 0.87, row.Score)

	// String-encoded fields were re-parsed.
	assert.Equal(t, "Seaside Inn", row.Fields["name"])
	assert.Equal(t, float64(4), row.Fields["stars"])

	// Already-structured explanation passed through.
	assert.Equal(t, map[string]any{"value": 0.87}, row.Explanation)

	assert.Equal(t, []string{"…the <mark>ocean</mark> view…"}, row.Fragments["description"])

	require.NotNil(t, row.Locations)
	locs := row.Locations.Get("description", "ocean")
	require.Len(t, locs, 1)
	assert.Equal(t, uint32(3), locs[0].Position)
	assert.Equal(t, uint32(14), locs[0].Start)
	assert.Equal(t, uint32(19), locs[0].End)
}

func TestDecodeRow_AbsentSubFieldsStayUnset(t *testing.T) {
	row, err := decodeRow(map[string]any{"id": "doc-1", "score": 1.0}, ShapeSearch)
	require.NoError(t, err)

	assert.Nil(t, row.Locations)
	assert.Nil(t, row.Fields)
	assert.Nil(t, row.Explanation)
	assert.Nil(t, row.Fragments)
}

func TestDecodeRow_StructuredFieldsPassThrough(t *testing.T) {
	fields := map[string]any{"name": "Seaside Inn"}

	row, err := decodeRow(map[string]any{"fields": fields}, ShapeSearch)
	require.NoError(t, err)
	assert.Equal(t, fields, row.Fields)
}

func TestDecodeRow_InvalidFieldJSON(t *testing.T) {
	_, err := decodeRow(map[string]any{"explanation": "{broken"}, ShapeSearch)
	assert.Error(t, err)
}

func TestRowLocations(t *testing.T) {
	raw := map[string]any{
		"title": map[string]any{
			"ocean": []any{
				map[string]any{"pos": float64(1), "start": float64(0), "end": float64(5)},
			},
			"view": []any{
				map[string]any{"pos": float64(2), "start": float64(6), "end": float64(10)},
			},
		},
		"description": map[string]any{
			"ocean": []any{
				map[string]any{
					"pos": float64(7), "start": float64(40), "end": float64(45),
					"array_positions": []any{float64(0), float64(2)},
				},
			},
		},
	}

	locs, err := NewRowLocations(raw)
	require.NoError(t, err)

	assert.Len(t, locs.GetAll(), 3)
	assert.Equal(t, []string{"description", "title"}, locs.Fields())
	assert.Equal(t, []string{"ocean", "view"}, locs.Terms())
	assert.Equal(t, []string{"ocean"}, locs.TermsFor("description"))

	occ := locs.Get("description", "ocean")
	require.Len(t, occ, 1)
	assert.Equal(t, "description", occ[0].Field)
	assert.Equal(t, "ocean", occ[0].Term)
	assert.Equal(t, []uint32{0, 2}, occ[0].ArrayPositions)

	assert.Empty(t, locs.Get("title", "missing"))
}

func TestNewRowLocations_BadShape(t *testing.T) {
	_, err := NewRowLocations("not a map")
	assert.Error(t, err)

	_, err = NewRowLocations(map[string]any{"field": "not a term map"})
	assert.Error(t, err)
}
