package dto

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bettrack/internal/ledger"
)

func TestFlexFloat(t *testing.T) {
	cases := map[string]float64{
		`12.5`:    12.5,
		`"12.50"`: 12.5,
		`" 7 "`:   7,
		`"abc"`:   0,
		`""`:      0,
		`"NaN"`:   0,
	}
	for in, want := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.Equal(t, want, float64(f), in)
	}

	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
}

func TestCreateBetRequest_ToInput(t *testing.T) {
	var req CreateBetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Derby","amount":"10","odds":"5/2","date":"2024-05-01T15:30"}`), &req))

	in, err := req.ToInput()
	require.NoError(t, err)
	assert.Equal(t, 10.0, in.Amount)
	assert.Equal(t, time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC), in.Date)
	assert.NoError(t, in.Validate())

	req.Date = "yesterday"
	_, err = req.ToInput()
	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Fields[0].Field)
}

func TestPatchBetRequest_ToPatch(t *testing.T) {
	var req PatchBetRequest
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"25","date":"2024-06-01"}`), &req))

	p, err := req.ToPatch()
	require.NoError(t, err)
	require.NotNil(t, p.Amount)
	assert.Equal(t, 25.0, *p.Amount)
	require.NotNil(t, p.Date)
	assert.Nil(t, p.Name)
	assert.True(t, p.TouchesPayout())
}

func TestFromBet_CoercesNonFinite(t *testing.T) {
	r := FromBet(ledger.Bet{ID: "x", Amount: 10, Outcome: ledger.Pending, Returns: math.NaN()})
	assert.Equal(t, 0.0, r.Returns)
	_, err := json.Marshal(r)
	assert.NoError(t, err)
}
