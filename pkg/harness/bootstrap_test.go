package harness

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/banksim/pkg/banks"
	"github.com/ontora-ai/banksim/pkg/identity"
)

func TestBootstrapFromYAML(t *testing.T) {
	env, err := NewEnv(Config{})
	require.NoError(t, err)

	acct1, err := identity.New()
	require.NoError(t, err)
	acct2, err := identity.New()
	require.NoError(t, err)
	owner, err := identity.New()
	require.NoError(t, err)

	data := base64.StdEncoding.EncodeToString([]byte{0xde, 0xad, 0xbe, 0xef})
	fixture := fmt.Sprintf(`
accounts:
  - address: %s
    lamports: 123456
  - address: %s
    lamports: 1
    owner: %s
    executable: true
    data: %s
    rent_epoch: 7
`, acct1.Address(), acct2.Address(), owner.Address(), data)

	require.NoError(t, env.BootstrapFromYAML(strings.NewReader(fixture)))

	first, ok := env.Ledger.Open(acct1.Address())
	require.True(t, ok)
	assert.Equal(t, uint64(123456), first.Lamports)
	assert.Equal(t, banks.SystemProgramAddr, first.Owner)
	assert.Empty(t, first.Data)

	second, ok := env.Ledger.Open(acct2.Address())
	require.True(t, ok)
	assert.Equal(t, owner.Address(), second.Owner)
	assert.True(t, second.Executable)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, second.Data)
	assert.Equal(t, uint64(7), second.RentEpoch)
}

func TestBootstrapRejectsDuplicates(t *testing.T) {
	env, err := NewEnv(Config{})
	require.NoError(t, err)

	fixture := fmt.Sprintf("accounts:\n  - address: %s\n    lamports: 5\n", env.Payer.Address())
	err = env.BootstrapFromYAML(strings.NewReader(fixture))
	assert.Error(t, err)
}

func TestBootstrapRejectsBadAddress(t *testing.T) {
	env, err := NewEnv(Config{})
	require.NoError(t, err)

	err = env.BootstrapFromYAML(strings.NewReader("accounts:\n  - address: not-base58!\n    lamports: 5\n"))
	assert.Error(t, err)
}
