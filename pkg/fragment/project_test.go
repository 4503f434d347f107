package fragment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	require.Nil(t, ParsePath(""))
	require.Equal(t, Path{"a"}, ParsePath("a"))
	require.Equal(t, Path{"pod", "labels", "app"}, ParsePath("pod.labels.app"))
	require.Equal(t, "pod.labels.app", ParsePath("pod.labels.app").String())
}

func TestProject(t *testing.T) {
	line := []byte(`{"level":"warn","status":503,"ok":false,"trace":null,"pod":{"name":"api-0","labels":{"app":"api"}},"tags":["a","b"],"msg":"say \"hi\""}`)

	tests := []struct {
		name  string
		paths []Path
		want  Object
	}{
		{
			"top level scalars",
			[]Path{{"level"}, {"status"}, {"ok"}, {"trace"}},
			Object{"level": "warn", "status": json.Number("503"), "ok": false, "trace": nil},
		},
		{
			"nested",
			[]Path{ParsePath("pod.labels.app"), ParsePath("pod.name")},
			Object{"pod.labels.app": "api", "pod.name": "api-0"},
		},
		{
			"object value",
			[]Path{{"pod", "labels"}},
			Object{"pod.labels": map[string]interface{}{"app": "api"}},
		},
		{
			"array value and index",
			[]Path{{"tags"}, {"tags", "[1]"}},
			Object{"tags": []interface{}{"a", "b"}, "tags.[1]": "b"},
		},
		{
			"escaped string",
			[]Path{{"msg"}},
			Object{"msg": `say "hi"`},
		},
		{
			"missing paths are omitted",
			[]Path{{"missing"}, {"pod", "missing"}, {}},
			Object{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Project(line, tt.paths)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestProject_Absent(t *testing.T) {
	for _, input := range []string{``, `{"level":"warn"`, `["level"]`, `{"level":"warn"} x`} {
		got, ok := Project([]byte(input), []Path{{"level"}})
		require.False(t, ok, input)
		require.Nil(t, got)
	}
}

func TestProject_DuplicateKeys(t *testing.T) {
	line := []byte(`{"a":1,"a":2,"b":{"c":"x","c":"y"}}`)

	obj, ok := Decode(line)
	require.True(t, ok)
	require.Equal(t, json.Number("2"), obj["a"])

	got, ok := Project(line, []Path{{"a"}, {"b", "c"}})
	require.True(t, ok)
	require.Equal(t, Object{"a": json.Number("1"), "b.c": "x"}, got)
}
