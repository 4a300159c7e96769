package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/banksim/pkg/ledger"
)

func newController(t *testing.T) (*Controller, *ledger.AccountStore) {
	store := ledger.NewAccountStore(nil)
	controller, err := New(store)
	require.NoError(t, err)
	return controller, store
}

func TestAdvance(t *testing.T) {
	controller, _ := newController(t)
	assert.Equal(t, uint64(0), controller.CurrentSlot())

	require.NoError(t, controller.Advance(5))
	assert.Equal(t, uint64(5), controller.CurrentSlot())

	require.NoError(t, controller.Advance(0))
	assert.Equal(t, uint64(5), controller.CurrentSlot())
}

func TestAdvanceNegative(t *testing.T) {
	controller, _ := newController(t)
	require.NoError(t, controller.Advance(7))

	err := controller.Advance(-1)
	assert.ErrorIs(t, err, ErrNegativeAdvance)
	assert.Equal(t, uint64(7), controller.CurrentSlot())
}

func TestSetSlotMonotonic(t *testing.T) {
	controller, _ := newController(t)
	require.NoError(t, controller.SetSlot(100))
	assert.Equal(t, uint64(100), controller.CurrentSlot())

	err := controller.SetSlot(99)
	assert.ErrorIs(t, err, ErrSlotRegression)
	assert.Equal(t, uint64(100), controller.CurrentSlot())

	// warping to the current slot is a no-op, not a regression
	require.NoError(t, controller.SetSlot(100))
}

func TestSysvarMirrorsSlot(t *testing.T) {
	controller, store := newController(t)

	sysvar, err := ReadClockSysvar(store)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), sysvar.Slot)

	require.NoError(t, controller.Advance(SlotsPerEpoch+3))

	sysvar, err = ReadClockSysvar(store)
	require.NoError(t, err)
	assert.Equal(t, uint64(SlotsPerEpoch+3), sysvar.Slot)
	assert.Equal(t, uint64(1), sysvar.Epoch)
	assert.Equal(t, uint64(2), sysvar.LeaderScheduleEpoch)
	assert.Greater(t, sysvar.UnixTimestamp, sysvar.EpochStartTimestamp)
}

func TestRecentBlockhashDeterministic(t *testing.T) {
	controller, _ := newController(t)

	h0 := controller.RecentBlockhashAt(0)
	h1 := controller.RecentBlockhashAt(1)
	assert.NotEqual(t, h0, h1)
	assert.Equal(t, h0, controller.RecentBlockhashAt(0))

	assert.Equal(t, h0, controller.RecentBlockhash())
	require.NoError(t, controller.Advance(1))
	assert.Equal(t, h1, controller.RecentBlockhash())
}
