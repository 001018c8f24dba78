package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariationScan(t *testing.T) {
	tests := []struct {
		name       string
		input      interface{}
		wantErrMsg string
		want       Variation
	}{
		{
			name:  "OK",
			input: []byte("{e2e4,e7e5,g1f3}"),
			want:  Variation{"e2e4", "e7e5", "g1f3"},
		},
		{
			name:  "Empty",
			input: []byte("{}"),
			want:  Variation{},
		},
		{
			name:       "InvalidType",
			input:      123,
			wantErrMsg: "cannot scan int into Variation",
		},
		{
			name:       "NilBytes",
			input:      []byte(nil),
			wantErrMsg: "cannot scan nil into Variation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var variation Variation
			err := variation.Scan(tt.input)
			if tt.wantErrMsg != "" {
				assert.EqualError(t, err, tt.wantErrMsg)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, variation)
		})
	}
}

func TestEvaluationCentipawns(t *testing.T) {
	tests := []struct {
		name string
		eval Evaluation
		want int
	}{
		{"NoResult", Evaluation{}, 0},
		{"Score", NewScoreEvaluation(12, -35), -35},
		{"MateInThree", NewMateEvaluation(12, 3), MateScore - 3},
		{"MatedInTwo", NewMateEvaluation(12, -2), -MateScore + 2},
		{"Mated", NewMateEvaluation(12, 0), -MateScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eval.Centipawns())
		})
	}
}

func TestEvaluationString(t *testing.T) {
	assert.Equal(t, "#3", NewMateEvaluation(1, 3).String())
	assert.Equal(t, "#-2", NewMateEvaluation(1, -2).String())
	assert.Equal(t, "+1.2", NewScoreEvaluation(1, 123).String())
	assert.Equal(t, "-0.5", NewScoreEvaluation(1, -50).String())
	assert.Equal(t, "0.0", NewScoreEvaluation(1, 0).String())
	assert.Equal(t, "0.0", Evaluation{}.String())
}

func TestEvaluationValidate(t *testing.T) {
	eval := NewScoreEvaluation(10, 20, "e2e4", "e7e5")
	assert.NoError(t, eval.Validate())

	both := NewScoreEvaluation(10, 20)
	mate := 1
	both.Mate = &mate
	assert.Error(t, both.Validate())

	badMove := NewScoreEvaluation(10, 20, "e4")
	assert.Error(t, badMove.Validate())

	negative := NewScoreEvaluation(-1, 0)
	assert.Error(t, negative.Validate())
}

func TestZeroEvaluation(t *testing.T) {
	zero := ZeroEvaluation()

	assert.True(t, zero.HasResult())
	assert.Equal(t, 0, zero.Depth)
	assert.Equal(t, 0, zero.Centipawns())
	assert.Empty(t, zero.Variation)
	assert.Equal(t, "", zero.BestMove())
}
