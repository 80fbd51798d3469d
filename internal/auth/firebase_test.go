package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/buildledger-backend/config"
)

func TestInitializeFirebaseDisabled(t *testing.T) {
	client, err := InitializeFirebase(&config.FirebaseConfig{Disabled: true})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestInitializeFirebaseRequiresCredentials(t *testing.T) {
	_, err := InitializeFirebase(&config.FirebaseConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_CREDENTIALS_PATH")
}
