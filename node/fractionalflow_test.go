// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFractionSumAcceptsExactSplit(t *testing.T) {
	require.NoError(t, ValidateFractionSum([]float64{0.25, 0.75}))
}

func TestValidateFractionSumRejectsShortSum(t *testing.T) {
	err := ValidateFractionSum([]float64{0.25, 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")
}

func TestValidateFractionSumRejectsNegativeFraction(t *testing.T) {
	err := ValidateFractionSum([]float64{-0.1, 1.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative fraction")
}

func TestValidateFractionSumToleratesRoundingNoise(t *testing.T) {
	require.NoError(t, ValidateFractionSum([]float64{0.3333333, 0.3333333, 0.3333334}))
}
