package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `{
	"name": "suite",
	"passed": true,
	"note": null,
	"classes": [
		{
			"name": "Sort",
			"methods": [
				{"name": "Sort.Ints", "stats": {"time[us]": {"mean": 12.5, "count": 10}}},
				{"name": "Sort.Strings", "stats": {"time[us]": {"mean": "7.25", "count": 10}}}
			]
		},
		{
			"name": "Map",
			"methods": [
				{"name": "Map.Put", "stats": {"time[us]": {"mean": 3, "count": 5}}}
			]
		}
	]
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  bool
	}{
		{name: "root member", path: "$.name", expected: "suite"},
		{name: "bare member", path: "name", expected: "suite"},
		{name: "bool", path: "$.passed", expected: "true"},
		{name: "null", path: "$.note", expected: "null"},
		{name: "index", path: "$.classes[1].name", expected: "Map"},
		{name: "nested index", path: "$.classes[0].methods[1].name", expected: "Sort.Strings"},
		{name: "quoted member with brackets", path: "$.classes[0].methods[0].stats['time[us]'].mean", expected: "12.5"},
		{name: "double quoted member", path: `$.classes[0].methods[0].stats["time[us]"].count`, expected: "10"},
		{name: "object is raw JSON", path: "$.classes[1].methods[0].stats", expected: `{"time[us]": {"mean": 3, "count": 5}}`},
		{name: "missing", path: "$.nope", wantErr: true},
		{name: "out of range", path: "$.classes[9]", wantErr: true},
		{name: "bad index", path: "$.classes[x]", wantErr: true},
		{name: "unterminated", path: "$.classes[0", wantErr: true},
		{name: "empty member", path: "$..name", wantErr: true},
		{name: "empty path", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(report, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtract_Root(t *testing.T) {
	got, err := Extract(`[1,2]`, "$")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", got)
}

func TestExtract_InvalidDocument(t *testing.T) {
	_, err := Extract("", "$.a")
	assert.Error(t, err)

	_, err = Extract(`{"a":`, "$.a")
	assert.Error(t, err)
}

func TestExtractFloat(t *testing.T) {
	v, err := ExtractFloat(report, "$.classes[0].methods[0].stats['time[us]'].mean")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, v, 1e-12)

	v, err = ExtractFloat(report, "$.classes[0].methods[1].stats['time[us]'].mean")
	require.NoError(t, err)
	assert.InDelta(t, 7.25, v, 1e-12)

	_, err = ExtractFloat(report, "$.name")
	assert.Error(t, err)

	_, err = ExtractFloat(report, "$.classes[0]")
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	names, err := Select(report, "$.classes[*].name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sort", "Map"}, names)

	methods, err := Select(report, "$.classes[*].methods[*].name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sort.Ints", "Sort.Strings", "Map.Put"}, methods)

	single, err := Select(report, "$.classes[1].name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Map"}, single)
}

func TestExtractMultiple(t *testing.T) {
	got, err := ExtractMultiple(report, map[string]string{
		"suite": "$.name",
		"first": "$.classes[0].name",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"suite": "suite", "first": "Sort"}, got)

	got, err = ExtractMultiple(report, map[string]string{
		"suite":   "$.name",
		"missing": "$.missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, "suite", got["suite"])

	_, err = ExtractMultiple(report, nil)
	assert.Error(t, err)
}

func TestToGjsonPath(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"$", "@this"},
		{"$.a.b", "a.b"},
		{"$[0]", "0"},
		{"$.a[2].b", "a.2.b"},
		{"$.a[*].b", "a.#.b"},
		{"$['a.b']", `a\.b`},
		{"a.b", "a.b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := toGjsonPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.out, got)
		})
	}
}
