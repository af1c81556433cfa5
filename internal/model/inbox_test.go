package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMessagingTier(t *testing.T) {
	cases := []struct {
		in   string
		want MessagingTier
	}{
		{"TIER_250", Tier250},
		{"TIER_50", Tier250},
		{"tier_1k", Tier1K},
		{"TIER_10K", Tier10K},
		{"TIER_100K", Tier100K},
		{"TIER_UNLIMITED", TierUnlimited},
		{"UNLIMITED", TierUnlimited},
		{"", TierUnknown},
		{"tier_9000", TierUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseMessagingTier(c.in), "input %q", c.in)
	}
}

func TestMessagingTierLimit(t *testing.T) {
	assert.Equal(t, 250, Tier250.Limit())
	assert.Equal(t, 1_000, Tier1K.Limit())
	assert.Equal(t, 10_000, Tier10K.Limit())
	assert.Equal(t, 100_000, Tier100K.Limit())
	assert.Equal(t, 100_000_000, TierUnlimited.Limit())

	// unknown tiers fall back to the smallest ceiling, never zero or unbounded
	assert.Equal(t, MinTierLimit, TierUnknown.Limit())
	assert.Equal(t, MinTierLimit, MessagingTier("tier_9000").Limit())
}

func TestParseQualityRating(t *testing.T) {
	assert.Equal(t, QualityGreen, ParseQualityRating("GREEN"))
	assert.Equal(t, QualityYellow, ParseQualityRating(" yellow "))
	assert.Equal(t, QualityRed, ParseQualityRating("Red"))
	assert.Equal(t, QualityUnknown, ParseQualityRating(""))
	assert.Equal(t, QualityUnknown, ParseQualityRating("purple"))
}

func TestInboxHasCredentials(t *testing.T) {
	full := Inbox{PhoneNumberID: "123", AccessToken: "tok"}
	noToken := Inbox{PhoneNumberID: "123"}
	noPhone := Inbox{AccessToken: "tok"}
	assert.True(t, full.HasCredentials())
	assert.False(t, noToken.HasCredentials())
	assert.False(t, noPhone.HasCredentials())
}
