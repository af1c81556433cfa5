package model

import (
	"strings"
	"time"
)

type TemplateCategory string

const (
	CategoryMarketing      TemplateCategory = "marketing"
	CategoryUtility        TemplateCategory = "utility"
	CategoryAuthentication TemplateCategory = "authentication"
	CategoryUnknown        TemplateCategory = "unknown"
)

func (c TemplateCategory) String() string { return string(c) }

// RequiresOptIn reports whether recipients must have recorded consent before
// this category may be sent. Unknown is treated like marketing: without a
// category we cannot prove the content is transactional.
func (c TemplateCategory) RequiresOptIn() bool {
	return c == CategoryMarketing || c == CategoryUnknown
}

// ResolveTemplateCategory resolves the effective category with a fixed
// precedence: the explicit category field wins, then the legacy kind field,
// otherwise unknown.
func ResolveTemplateCategory(category, kind string) TemplateCategory {
	if c := parseCategory(category); c != CategoryUnknown {
		return c
	}
	if c := parseCategory(kind); c != CategoryUnknown {
		return c
	}
	return CategoryUnknown
}

func parseCategory(s string) TemplateCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "marketing":
		return CategoryMarketing
	case "utility", "transactional":
		return CategoryUtility
	case "authentication", "otp":
		return CategoryAuthentication
	default:
		return CategoryUnknown
	}
}

type TemplateApproval string

const (
	TemplateApproved TemplateApproval = "approved"
	TemplatePending  TemplateApproval = "pending"
	TemplateRejected TemplateApproval = "rejected"
)

func (a TemplateApproval) String() string { return string(a) }

// MessageTemplate is an upstream-registered message template. Category may be
// empty on rows imported before the category field existed; Kind is the
// legacy fallback.
type MessageTemplate struct {
	ID             int64            `db:"id"`
	InboxID        int64            `db:"inbox_id"`
	Name           string           `db:"name"`
	Category       string           `db:"category"`
	Kind           *string          `db:"kind"`
	ApprovalStatus TemplateApproval `db:"approval_status"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

// ResolvedCategory applies the category/kind precedence for this template.
func (t *MessageTemplate) ResolvedCategory() TemplateCategory {
	kind := ""
	if t.Kind != nil {
		kind = *t.Kind
	}
	return ResolveTemplateCategory(t.Category, kind)
}
