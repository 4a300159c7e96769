package pda

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPubkey(t *testing.T) solana.PublicKey {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func TestFindProgramAddress_Deterministic(t *testing.T) {
	programID := randomPubkey(t)
	owner := randomPubkey(t)

	agentID := make([]byte, 8)
	binary.LittleEndian.PutUint64(agentID, 1)
	seeds := [][]byte{[]byte("ai_agent"), owner.Bytes(), agentID}

	addr1, bump1, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	addr2, bump2, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
}

func TestFindProgramAddress_DiffersBySeedsAndProgram(t *testing.T) {
	programID := randomPubkey(t)
	otherProgramID := randomPubkey(t)

	proposalID := make([]byte, 8)
	binary.LittleEndian.PutUint64(proposalID, 42)
	seeds := [][]byte{[]byte("proposal"), proposalID}

	addr, _, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	otherAddr, _, err := FindProgramAddress(seeds, otherProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, addr, otherAddr)

	otherSeeds := [][]byte{[]byte("proposal"), proposalID, []byte("x")}
	thirdAddr, _, err := FindProgramAddress(otherSeeds, programID)
	require.NoError(t, err)
	assert.NotEqual(t, addr, thirdAddr)
}

func TestFindProgramAddress_OffCurve(t *testing.T) {
	programID := randomPubkey(t)

	// every derived address must fall outside signer key space
	for i := byte(0); i < 16; i++ {
		addr, _, err := FindProgramAddress([][]byte{{i}}, programID)
		require.NoError(t, err)
		assert.False(t, IsOnCurve(addr.Bytes()))
	}

	// real signing keys are on-curve, so no derived address can
	// collide with one
	signer := randomPubkey(t)
	assert.True(t, IsOnCurve(signer.Bytes()))
}

func TestCreateProgramAddress_ReproducesBump(t *testing.T) {
	programID := randomPubkey(t)
	seeds := [][]byte{[]byte("vault"), randomPubkey(t).Bytes()}

	addr, bump, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	seedsWithBump := append(append([][]byte{}, seeds...), []byte{bump})
	recreated, err := CreateProgramAddress(seedsWithBump, programID)
	require.NoError(t, err)
	assert.Equal(t, addr, recreated)
}

func TestSeedLimits(t *testing.T) {
	programID := randomPubkey(t)

	tooMany := make([][]byte, MaxSeeds+1)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	_, err := CreateProgramAddress(tooMany, programID)
	assert.ErrorIs(t, err, ErrSeedLength)

	// FindProgramAddress reserves a slot for the bump seed
	atLimit := make([][]byte, MaxSeeds)
	for i := range atLimit {
		atLimit[i] = []byte{byte(i)}
	}
	_, _, err = FindProgramAddress(atLimit, programID)
	assert.ErrorIs(t, err, ErrSeedLength)

	_, err = CreateProgramAddress([][]byte{make([]byte, MaxSeedLen+1)}, programID)
	assert.ErrorIs(t, err, ErrSeedTooLong)
}
