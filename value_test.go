package bunim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValueShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want value
	}{
		{"quoted string", `"hello"`, value{kind: stringValue, str: "hello"}},
		{"raw passthrough", `2.4.1`, value{kind: stringValue, str: "2.4.1"}},
		{"at array", `@["a", "b"]`, value{kind: arrayValue, list: []string{"a", "b"}}},
		{"bare array", `[x, y]`, value{kind: arrayValue, list: []string{"x", "y"}}},
		{"empty array", `@[]`, value{kind: arrayValue}},
		{"map", `{"k": "v", "k2": "v2"}`, value{kind: mapValue, pairs: []mapPair{{"k", "v"}, {"k2", "v2"}}}},
		{"multiline string", "\"line one\nline two\"", value{kind: stringValue, str: "line one\nline two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestValueCoercion(t *testing.T) {
	arr := parseValue(`@["a", "b"]`)
	assert.Equal(t, []string{"a", "b"}, arr.asList())
	assert.Equal(t, "a, b", arr.asString())

	mp := parseValue(`{"client": "src/c", "server": "src/s"}`)
	assert.Equal(t, []string{"client", "server"}, mp.asList())

	str := parseValue(`"solo"`)
	assert.Equal(t, []string{"solo"}, str.asList())
	assert.Nil(t, parseValue(`""`).asList())
}
