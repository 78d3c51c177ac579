package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensedesk/internal/service"
)

func TestManifestRoundTrip(t *testing.T) {
	priv, pub, err := service.GenerateKeyPair()
	require.NoError(t, err)

	body := []byte("id,code\n1,ABCD-EFGH-JKLM\n")
	filters := map[string]string{"status": "active", "type": "all", "q": ""}

	token, err := SignManifest(priv, body, 1, filters, time.Now())
	require.NoError(t, err)

	m, err := VerifyManifest(pub, token, body)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Rows)
	assert.Equal(t, Digest(body), m.SHA256)
	assert.Equal(t, filters, m.Filters)
	assert.Equal(t, Issuer, m.Issuer)
}

func TestManifestRejectsTampering(t *testing.T) {
	priv, pub, err := service.GenerateKeyPair()
	require.NoError(t, err)
	_, otherPub, err := service.GenerateKeyPair()
	require.NoError(t, err)

	body := []byte("id,code\n1,ABCD-EFGH-JKLM\n")
	token, err := SignManifest(priv, body, 1, nil, time.Now())
	require.NoError(t, err)

	_, err = VerifyManifest(pub, token, []byte("id,code\n"))
	assert.ErrorContains(t, err, "does not match")

	_, err = VerifyManifest(otherPub, token, body)
	assert.ErrorContains(t, err, "token validation failed")

	_, err = SignManifest("", body, 1, nil, time.Now())
	assert.Error(t, err)
}
