// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorLayout(t *testing.T) {
	v := New(3, 2)
	assert.Len(t, v.Y, 5)
	assert.Equal(t, 3, v.NumBasins())
	assert.Equal(t, 2, v.NumPid())
}

func TestStorageAndIntegralAccessors(t *testing.T) {
	v := New(2, 1)
	v.SetStorage(0, 10)
	v.SetStorage(1, 20)
	v.SetIntegral(0, 5)
	assert.Equal(t, 10.0, v.Storage(0))
	assert.Equal(t, 20.0, v.Storage(1))
	assert.Equal(t, 5.0, v.Integral(0))
}

func TestBasinAndPidIndexIntoPackedLayout(t *testing.T) {
	v := New(2, 2)
	assert.Equal(t, 0, v.BasinIndex(0))
	assert.Equal(t, 1, v.BasinIndex(1))
	assert.Equal(t, 2, v.PidIndex(0))
	assert.Equal(t, 3, v.PidIndex(1))
}

func TestOutOfRangeAccessPanics(t *testing.T) {
	v := New(1, 1)
	assert.Panics(t, func() { v.Storage(1) })
	assert.Panics(t, func() { v.Integral(-1) })
}

func TestCloneIsIndependent(t *testing.T) {
	v := New(1, 0)
	v.SetStorage(0, 1)
	clone := v.Clone()
	clone.SetStorage(0, 99)
	assert.Equal(t, 1.0, v.Storage(0))
	assert.Equal(t, 99.0, clone.Storage(0))
}
