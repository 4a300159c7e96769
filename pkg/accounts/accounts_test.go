package accounts

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(t *testing.T) Account {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	owner, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return Account{
		Key:       key.PublicKey(),
		Lamports:  12345,
		Data:      []byte{1, 2, 3},
		Owner:     owner.PublicKey(),
		RentEpoch: 100,
	}
}

func TestCloneIsIndependent(t *testing.T) {
	acct := testAccount(t)
	clone := acct.Clone()

	clone.Data[0] = 99
	clone.Lamports = 1

	assert.Equal(t, []byte{1, 2, 3}, acct.Data)
	assert.Equal(t, uint64(12345), acct.Lamports)
}

func TestHashTracksState(t *testing.T) {
	acct := testAccount(t)
	base := acct.Hash()

	assert.Equal(t, base, acct.Hash())

	changed := acct.Clone()
	changed.Lamports++
	assert.NotEqual(t, base, changed.Hash())

	changed = acct.Clone()
	changed.SetData([]byte{1, 2, 4})
	assert.NotEqual(t, base, changed.Hash())

	changed = acct.Clone()
	changed.Executable = true
	assert.NotEqual(t, base, changed.Hash())
}

func TestMarshalRoundTrip(t *testing.T) {
	acct := testAccount(t)

	buf := new(bytes.Buffer)
	require.NoError(t, acct.MarshalWithEncoder(bin.NewBinEncoder(buf)))

	var decoded Account
	require.NoError(t, decoded.UnmarshalWithDecoder(bin.NewBinDecoder(buf.Bytes())))
	assert.Equal(t, acct, decoded)
}
