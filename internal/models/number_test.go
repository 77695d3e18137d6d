package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		set   bool
		valid bool
		value float64
	}{
		{"number", `{"n":4000000}`, true, true, 4000000},
		{"fraction", `{"n":8.5}`, true, true, 8.5},
		{"numeric string", `{"n":" 8.5 "}`, true, true, 8.5},
		{"empty string", `{"n":""}`, true, false, 0},
		{"word", `{"n":"abc"}`, true, false, 0},
		{"bool", `{"n":true}`, true, false, 0},
		{"object", `{"n":{"v":1}}`, true, false, 0},
		{"null", `{"n":null}`, false, false, 0},
		{"missing", `{}`, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				N Number `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &body))
			assert.Equal(t, tt.set, body.N.Set)
			assert.Equal(t, tt.valid, body.N.Valid)
			if tt.valid {
				assert.Equal(t, tt.value, body.N.Float())
			} else {
				assert.True(t, math.IsNaN(body.N.Float()))
			}
		})
	}
}

func TestNumber_Optional(t *testing.T) {
	assert.Nil(t, Number{}.Optional())
	assert.Equal(t, 5.0, *NewNumber(5).Optional())
	assert.True(t, math.IsNaN(*Number{Set: true}.Optional()))
}

func TestMortgageRequest_Loan(t *testing.T) {
	var req MortgageRequest
	require.NoError(t, json.Unmarshal([]byte(`{"loanAmount":"4000000","interestRate":8.5,"loanTenure":20,"downPayment":1000000}`), &req))

	loan := req.Loan()
	assert.Equal(t, 4_000_000.0, loan.Principal)
	assert.Equal(t, 8.5, loan.AnnualRatePercent)
	assert.Equal(t, 20.0, loan.TenureYears)
	assert.Nil(t, loan.PropertyPrice)
	require.NotNil(t, loan.DownPayment)
	assert.Equal(t, 1_000_000.0, *loan.DownPayment)
}
