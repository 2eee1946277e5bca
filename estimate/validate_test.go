package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataResolve_Modality(t *testing.T) {
	ages := []float64{0, 1, 2}

	tests := []struct {
		name string
		data Data
	}{
		{"both paths", Data{Ages: ages, Migrants: []float64{1, 2, 3}, Pop: []float64{10, 10, 10}, Rates: []float64{0.1, 0.2, 0.3}}},
		{"neither path", Data{Ages: ages}},
		{"migrants without pop", Data{Ages: ages, Migrants: []float64{1, 2, 3}}},
		{"pop without migrants", Data{Ages: ages, Pop: []float64{10, 10, 10}}},
		{"sigma on the counts path", Data{Ages: ages, Migrants: []float64{1, 2, 3}, Pop: []float64{10, 10, 10}, Sigma: 0.1}},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.data.resolve()
			require.ErrorIs(t, err, ErrDataModality)
			require.ErrorIs(t, err, ErrConfiguration, "every modality defect matches the root sentinel")
		})
	}
}

func TestDataResolve_Content(t *testing.T) {
	ages := []float64{0, 1, 2}

	tests := []struct {
		name string
		data Data
		want error
	}{
		{"no ages", Data{Rates: []float64{0.1}}, ErrDataLength},
		{"non-finite age", Data{Ages: []float64{0, math.NaN(), 2}, Rates: []float64{0.1, 0.2, 0.3}}, ErrDataValue},
		{"migrant length mismatch", Data{Ages: ages, Migrants: []float64{1, 2}, Pop: []float64{10, 10, 10}}, ErrDataLength},
		{"fractional migrants", Data{Ages: ages, Migrants: []float64{1, 2.5, 3}, Pop: []float64{10, 10, 10}}, ErrDataValue},
		{"negative migrants", Data{Ages: ages, Migrants: []float64{1, -2, 3}, Pop: []float64{10, 10, 10}}, ErrDataValue},
		{"zero population", Data{Ages: ages, Migrants: []float64{1, 2, 3}, Pop: []float64{10, 0, 10}}, ErrDataValue},
		{"rates length mismatch", Data{Ages: ages, Rates: []float64{0.1}}, ErrDataLength},
		{"non-finite rate", Data{Ages: ages, Rates: []float64{0.1, math.Inf(1), 0.3}}, ErrDataValue},
		{"negative sigma", Data{Ages: ages, Rates: []float64{0.1, 0.2, 0.3}, Sigma: -1}, ErrDataValue},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.data.resolve()
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDataResolve_SelectsLikelihood(t *testing.T) {
	ages := []float64{0, 10, 20}

	like, err := Data{Ages: ages, Migrants: []float64{3, 0, 14}, Pop: []float64{100, 120, 90}}.resolve()
	require.NoError(t, err)
	assert.Equal(t, LikelihoodPoisson, like)

	like, err = Data{Ages: ages, Rates: []float64{0.03, 0, 0.16}}.resolve()
	require.NoError(t, err)
	assert.Equal(t, LikelihoodNormal, like)

	like, err = Data{Ages: ages, Rates: []float64{0.03, 0, 0.16}, Sigma: 0.01}.resolve()
	require.NoError(t, err)
	assert.Equal(t, LikelihoodNormal, like)
}

func TestDataClone_Detaches(t *testing.T) {
	src := Data{Ages: []float64{1, 2}, Rates: []float64{0.1, 0.2}, Sigma: 0.5}
	cp := src.clone()

	src.Ages[0] = 99
	src.Rates[1] = 99
	assert.Equal(t, 1.0, cp.Ages[0])
	assert.Equal(t, 0.2, cp.Rates[1])
	assert.Equal(t, 0.5, cp.Sigma)
	assert.Nil(t, cp.Migrants)
	assert.Nil(t, cp.Pop)
}
