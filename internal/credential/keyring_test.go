package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kitchen-roster/internal/credential"
)

func TestVaultRoundTrip(t *testing.T) {
	v := credential.NewVault(keyring.NewArrayKeyring(nil))

	_, err := v.Get(credential.SessionUserKey)
	require.Error(t, err)
	assert.True(t, credential.IsNotFound(err))

	require.NoError(t, v.Set(credential.SessionUserKey, "u-42"))
	got, err := v.Get(credential.SessionUserKey)
	require.NoError(t, err)
	assert.Equal(t, "u-42", got)

	require.NoError(t, v.Delete(credential.SessionUserKey))
	require.NoError(t, v.Delete(credential.SessionUserKey))

	_, err = v.Get(credential.SessionUserKey)
	assert.True(t, credential.IsNotFound(err))
}
