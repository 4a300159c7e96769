// Package clock owns the simulated ledger's logical time. The slot
// only moves when a test asks for it; submission never advances time.
package clock

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"sync"

	"k8s.io/klog/v2"

	"github.com/ontora-ai/banksim/pkg/accounts"
	"github.com/ontora-ai/banksim/pkg/ledger"
)

var (
	ErrNegativeAdvance = errors.New("ErrNegativeAdvance")
	ErrSlotRegression  = errors.New("ErrSlotRegression")
)

const SlotsPerEpoch = 432000

// genesisUnixTimestamp anchors the simulated wall clock. Slots tick at
// 400ms like mainnet so time-dependent program logic sees plausible
// timestamps.
const genesisUnixTimestamp = 1584368940

// Controller owns the monotonic slot counter and mirrors it into the
// clock sysvar account so program handlers read time on-chain style.
type Controller struct {
	mu    sync.Mutex
	slot  uint64
	store *ledger.AccountStore
}

// New creates a controller at slot 0 and bootstraps the clock sysvar
// account into the store.
func New(store *ledger.AccountStore) (*Controller, error) {
	c := &Controller{store: store}

	sysvar := SysvarClock{}
	c.fillSysvar(&sysvar)
	data, err := sysvar.Marshal()
	if err != nil {
		return nil, err
	}

	err = store.Bootstrap(accounts.Account{
		Key:      SysvarClockAddr,
		Lamports: 1,
		Data:     data,
		Owner:    SysvarOwnerAddr,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) CurrentSlot() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot
}

// Advance moves the slot forward by n. A negative n fails with
// ErrNegativeAdvance and leaves the slot unchanged.
func (c *Controller) Advance(n int64) error {
	if n < 0 {
		return ErrNegativeAdvance
	}

	c.mu.Lock()
	c.slot += uint64(n)
	slot := c.slot
	c.mu.Unlock()

	klog.V(2).Infof("advanced clock by %d slots to slot %d", n, slot)
	return c.writeSysvar()
}

// SetSlot warps directly to the given slot. The slot is monotonic:
// warping backwards fails with ErrSlotRegression.
func (c *Controller) SetSlot(slot uint64) error {
	c.mu.Lock()
	if slot < c.slot {
		c.mu.Unlock()
		return ErrSlotRegression
	}
	c.slot = slot
	c.mu.Unlock()

	klog.V(2).Infof("warped clock to slot %d", slot)
	return c.writeSysvar()
}

// RecentBlockhash returns the freshness token for the current slot.
func (c *Controller) RecentBlockhash() [32]byte {
	return c.RecentBlockhashAt(c.CurrentSlot())
}

// RecentBlockhashAt is a pure function of the slot, so a transaction
// built at slot N can be checked against N later without keeping a
// blockhash queue.
func (c *Controller) RecentBlockhashAt(slot uint64) [32]byte {
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], slot)

	hasher := sha256.New()
	hasher.Write([]byte("banksim-recent-blockhash"))
	hasher.Write(slotBytes[:])

	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

func (c *Controller) fillSysvar(sysvar *SysvarClock) {
	c.mu.Lock()
	slot := c.slot
	c.mu.Unlock()

	sysvar.Slot = slot
	sysvar.Epoch = slot / SlotsPerEpoch
	sysvar.LeaderScheduleEpoch = sysvar.Epoch + 1
	sysvar.EpochStartTimestamp = genesisUnixTimestamp + int64(sysvar.Epoch*SlotsPerEpoch)*400/1000
	sysvar.UnixTimestamp = genesisUnixTimestamp + int64(slot)*400/1000
}

func (c *Controller) writeSysvar() error {
	var sysvar SysvarClock
	c.fillSysvar(&sysvar)

	data, err := sysvar.Marshal()
	if err != nil {
		return err
	}

	return c.store.ApplyProgramEffect(SysvarClockAddr, func(acct *accounts.Account) error {
		acct.SetData(data)
		return nil
	})
}

// ReadClockSysvar decodes the clock sysvar account out of the store.
func ReadClockSysvar(store *ledger.AccountStore) (SysvarClock, error) {
	acct, ok := store.Open(SysvarClockAddr)
	if !ok {
		return SysvarClock{}, ledger.ErrAccountNotFound
	}

	var sysvar SysvarClock
	if err := sysvar.Unmarshal(acct.Data); err != nil {
		return SysvarClock{}, err
	}
	return sysvar, nil
}
