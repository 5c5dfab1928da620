package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPendingOAuthSession_Matches(t *testing.T) {
	session := &PendingOAuthSession{
		ID:             uuid.New(),
		Provider:       ProviderTikTok,
		CallbackPrefix: "https://app.thaiquestify.com/callback/tiktok-profile",
	}

	assert.True(t, session.Matches("https://app.thaiquestify.com/callback/tiktok-profile?code=abc"))
	assert.False(t, session.Matches("https://elsewhere.example.com/callback?code=abc"))

	var nilSession *PendingOAuthSession
	assert.False(t, nilSession.Matches("https://app.thaiquestify.com/callback/tiktok-profile"))

	empty := &PendingOAuthSession{}
	assert.False(t, empty.Matches("https://app.thaiquestify.com/anything"))
}

func TestRole_Valid(t *testing.T) {
	for _, role := range []Role{RoleCustomer, RoleShop, RolePartner, RoleAdmin} {
		assert.True(t, role.Valid(), string(role))
	}

	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
