package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Jakarta Jazz Festival 2026": "jakarta-jazz-festival-2026",
		"  VIP / Early-Bird!  ":      "vip-early-bird",
		"---":                        "",
		"Already-Slugged":            "already-slugged",
		"Ünïcode Müsic":              "n-code-m-sic",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, validSlug("jakarta-jazz-2026"))
	assert.True(t, validSlug("a"))
	assert.False(t, validSlug(""))
	assert.False(t, validSlug("-leading"))
	assert.False(t, validSlug("trailing-"))
	assert.False(t, validSlug("Upper-Case"))
	assert.False(t, validSlug("double--hyphen"))
	assert.False(t, validSlug("spa ce"))
}
