package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 000-0001": "+15550000001",
		"0015550000002":     "+15550000002",
		"15550000003":       "+15550000003",
		"  +49 170 1234567": "+491701234567",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}
