package datagov

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Number
	}{
		{name: "integer", input: `42`, want: N(42)},
		{name: "float", input: `12.5`, want: N(12.5)},
		{name: "numeric string", input: `"1234"`, want: N(1234)},
		{name: "padded numeric string", input: `" 7 "`, want: N(7)},
		{name: "negative", input: `-3`, want: N(-3)},
		{name: "null", input: `null`, want: Number{}},
		{name: "empty string", input: `""`, want: Number{}},
		{name: "NA", input: `"NA"`, want: Number{}},
		{name: "NaN string", input: `"NaN"`, want: Number{}},
		{name: "infinity string", input: `"Inf"`, want: Number{}},
		{name: "boolean", input: `true`, want: Number{}},
		{name: "thousands separator", input: `"1,234"`, want: Number{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Number
			require.NoError(t, json.Unmarshal([]byte(tc.input), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNumberInRecord(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"month":"Apr","Total_Households_Worked":"250","Number_of_Ongoing_Works":{"x":1}}`), &r)
	require.NoError(t, err)

	assert.Equal(t, "Apr", r.Month)
	assert.Equal(t, 250.0, r.HouseholdsWorked.Or(0))
	assert.False(t, r.OngoingWorks.Valid)
	assert.False(t, r.PersonDays.Valid, "absent field is missing")
}

func TestNumberMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: N(10.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":10.5,"b":null}`, string(b))
}

func TestN(t *testing.T) {
	assert.False(t, N(math.NaN()).Valid)
	assert.False(t, N(math.Inf(1)).Valid)
	assert.Equal(t, 3.0, N(3).Or(9))
	assert.Equal(t, 9.0, Number{}.Or(9))
}
