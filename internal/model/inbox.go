package model

import (
	"strings"
	"time"
)

type QualityRating string

const (
	QualityGreen   QualityRating = "green"
	QualityYellow  QualityRating = "yellow"
	QualityRed     QualityRating = "red"
	QualityUnknown QualityRating = "unknown"
)

func (q QualityRating) String() string { return string(q) }

// ParseQualityRating maps upstream rating strings (GREEN/YELLOW/RED) to the
// internal enum; anything unrecognized becomes unknown.
func ParseQualityRating(s string) QualityRating {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "green":
		return QualityGreen
	case "yellow":
		return QualityYellow
	case "red":
		return QualityRed
	default:
		return QualityUnknown
	}
}

type MessagingTier string

const (
	Tier250       MessagingTier = "tier_250"
	Tier1K        MessagingTier = "tier_1k"
	Tier10K       MessagingTier = "tier_10k"
	Tier100K      MessagingTier = "tier_100k"
	TierUnlimited MessagingTier = "tier_unlimited"
	TierUnknown   MessagingTier = "tier_unknown"
)

func (t MessagingTier) String() string { return string(t) }

// Tier ceilings. An unknown tier must resolve to the smallest configured
// ceiling: missing upstream data never yields an unbounded send budget.
const (
	TierLimit250       = 250
	TierLimit1K        = 1_000
	TierLimit10K       = 10_000
	TierLimit100K      = 100_000
	TierLimitUnlimited = 100_000_000

	MinTierLimit = TierLimit250
)

// Limit returns the numeric daily ceiling for the tier.
func (t MessagingTier) Limit() int {
	switch t {
	case Tier250:
		return TierLimit250
	case Tier1K:
		return TierLimit1K
	case Tier10K:
		return TierLimit10K
	case Tier100K:
		return TierLimit100K
	case TierUnlimited:
		return TierLimitUnlimited
	default:
		return MinTierLimit
	}
}

// ParseMessagingTier maps upstream tier strings (TIER_1K, TIER_10K, ...) to
// the internal enum; unmapped values become tier_unknown.
func ParseMessagingTier(s string) MessagingTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tier_250", "tier_50": // TIER_50 is the pre-verification trial tier
		return Tier250
	case "tier_1k":
		return Tier1K
	case "tier_10k":
		return Tier10K
	case "tier_100k":
		return Tier100K
	case "tier_unlimited", "unlimited":
		return TierUnlimited
	default:
		return TierUnknown
	}
}

// Inbox is a sending identity (one WhatsApp phone number) with its cached
// upstream health state.
type Inbox struct {
	ID              int64         `db:"id"`
	AccountID       int64         `db:"account_id"`
	Name            string        `db:"name"`
	PhoneNumberID   string        `db:"phone_number_id"`
	AccessToken     string        `db:"access_token"`
	QualityRating   QualityRating `db:"quality_rating"`
	MessagingTier   MessagingTier `db:"messaging_tier"`
	TierLimit       int           `db:"tier_limit"`
	HealthUpdatedAt *time.Time    `db:"health_updated_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// HasCredentials reports whether the inbox can talk to the upstream API.
func (i *Inbox) HasCredentials() bool {
	return i.PhoneNumberID != "" && i.AccessToken != ""
}
