package canon

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_KeyOrderingAndArrayOrder(t *testing.T) {
	out, err := MarshalToString(map[string]any{
		"b": 1,
		"a": []any{3, 2, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[3,2,1],"b":1}`, out)
}

func TestMarshal_NestedObjectsSortRecursively(t *testing.T) {
	out, err := MarshalToString(map[string]any{
		"z": map[string]any{"b": 2, "a": 1},
		"a": true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"z":{"a":1,"b":2}}`, out)
}

func TestMarshal_StringEscaping(t *testing.T) {
	out, err := MarshalToString(map[string]any{"s": "line\nbreak\t\"quote\""})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"line\nbreak\t\"quote\""}`, out)
}

func TestMarshal_NumberShortestForm(t *testing.T) {
	cases := map[string]string{
		`{"v":1}`:     `{"v":1}`,
		`{"v":1.5}`:   `{"v":1.5}`,
		`{"v":120.0}`: `{"v":120}`,
		`{"v":-0}`:    `{"v":0}`,
	}
	for in, want := range cases {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(in), &v))
		got, err := MarshalToString(v)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMarshal_NonFiniteRejected(t *testing.T) {
	_, err := Marshal(map[string]any{"v": math.Inf(1)})
	assert.ErrorIs(t, err, ErrNonFiniteNumber)
}

func TestMarshal_RoundTripIdempotent(t *testing.T) {
	v := map[string]any{
		"id":    "cart_1",
		"items": []any{"x", "y"},
		"total": 120.0,
	}
	first, err := Marshal(v)
	require.NoError(t, err)

	second, err := Marshal(first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMarshal_StructsHonorJSONTags(t *testing.T) {
	type payload struct {
		Nonce   string `json:"nonce"`
		Service string `json:"service"`
	}
	out, err := MarshalToString(payload{Nonce: "n1", Service: "svc"})
	require.NoError(t, err)
	assert.Equal(t, `{"nonce":"n1","service":"svc"}`, out)
}
