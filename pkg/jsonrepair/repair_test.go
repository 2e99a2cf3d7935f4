package jsonrepair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-portal/pkg/jsonrepair"
)

func TestRepair_ObjetosConcatenados(t *testing.T) {
	out, changed := jsonrepair.Repair([]byte(`{"a":1}{"b":2}`))
	assert.True(t, changed)
	assert.Equal(t, `[{"a":1},{"b":2}]`, string(out))

	var got []map[string]int
	require.NoError(t, jsonrepair.Unmarshal([]byte(`{"a":1}{"b":2}`), &got))
	assert.Equal(t, []map[string]int{{"a": 1}, {"b": 2}}, got)
}

func TestRepair_ObjetosConcatenadosConEspacios(t *testing.T) {
	out, _ := jsonrepair.Repair([]byte("{\"a\":1}\n  {\"b\":2}\r\n{\"c\":3}"))
	assert.Equal(t, "[{\"a\":1},\n  {\"b\":2},\r\n{\"c\":3}]", string(out))
}

func TestRepair_DentroDeArreglo(t *testing.T) {
	var got []map[string]string
	require.NoError(t, jsonrepair.Unmarshal([]byte(`[{"x":"1"}{"x":"2"}]`), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "2", got[1]["x"])
}

func TestRepair_NoTocaStrings(t *testing.T) {
	in := `{"texto":"}{ y \"}{\""}`
	out, changed := jsonrepair.Repair([]byte(in))
	assert.False(t, changed)
	assert.Equal(t, in, string(out))
}

func TestUnmarshal_JSONValidoNoSeModifica(t *testing.T) {
	var got map[string]int
	require.NoError(t, jsonrepair.Unmarshal([]byte(`{"a":1}`), &got))
	assert.Equal(t, 1, got["a"])
}

func TestUnmarshal_Irreparable(t *testing.T) {
	var got map[string]any
	err := jsonrepair.Unmarshal([]byte(`{"a":`), &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, jsonrepair.ErrUnrepairable)
}

func TestUnmarshal_ErrorDeTipoNoSeRepara(t *testing.T) {
	var got struct {
		A int `json:"a"`
	}
	err := jsonrepair.Unmarshal([]byte(`{"a":"texto"}`), &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, jsonrepair.ErrUnrepairable)
}
