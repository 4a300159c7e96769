package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckedArithmetic(t *testing.T) {
	sum, err := CheckedAddU64(1, 2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	_, err = CheckedAddU64(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	diff, err := CheckedSubU64(10, 4)
	assert.NoError(t, err)
	assert.Equal(t, uint64(6), diff)

	_, err = CheckedSubU64(4, 10)
	assert.ErrorIs(t, err, ErrUnderflow)

	product, err := CheckedMulU64(1<<32, 1<<31)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1)<<63, product)

	_, err = CheckedMulU64(1<<32, 1<<32)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSaturatingArithmetic(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAddU64(math.MaxUint64, 1))
	assert.Equal(t, uint64(5), SaturatingAddU64(2, 3))
	assert.Equal(t, uint64(0), SaturatingSubU64(4, 10))
	assert.Equal(t, uint64(6), SaturatingSubU64(10, 4))
}
