package rag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const policyText = `# Return Policy

All returns are accepted within 30 days of purchase.

## Healthy Plants

Healthy plants can be returned for a full refund with the original receipt.

## Damaged Plants

Plants damaged in transit are replaced free of charge.

# Store Credit

Returns without a receipt are issued store credit.
`

func TestSplitPolicySections(t *testing.T) {
	sections := SplitPolicy(policyText)
	require.Len(t, sections, 4)

	assert.Equal(t, []string{"Return Policy"}, sections[0].HeadingPath)
	assert.Equal(t, []string{"Return Policy", "Healthy Plants"}, sections[1].HeadingPath)
	assert.Equal(t, []string{"Return Policy", "Damaged Plants"}, sections[2].HeadingPath)
	assert.Equal(t, []string{"Store Credit"}, sections[3].HeadingPath)
}

func TestSplitPolicyRetainsHeadings(t *testing.T) {
	sections := SplitPolicy(policyText)
	require.NotEmpty(t, sections)

	// Heading markers stay in the body so chunks read standalone.
	assert.Contains(t, sections[0].Body, "# Return Policy")
	assert.Contains(t, sections[1].Body, "## Healthy Plants")
	assert.Contains(t, sections[1].Body, "full refund")
}

func TestSplitPolicyPreamble(t *testing.T) {
	sections := SplitPolicy("Welcome to the store.\n\n# Returns\n\nSee below.")
	require.Len(t, sections, 2)

	assert.Empty(t, sections[0].HeadingPath)
	assert.Equal(t, "Welcome to the store.", sections[0].Body)
}

func TestSplitPolicyDeterministic(t *testing.T) {
	first := SectionChunks(SplitPolicy(policyText))
	second := SectionChunks(SplitPolicy(policyText))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
	assert.Equal(t, "policy-000", first[0].ID)
	assert.Equal(t, "Return Policy > Healthy Plants", first[1].Metadata["heading"])
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "return_policy.md")
	require.NoError(t, os.WriteFile(path, []byte(policyText), 0o644))

	text, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, policyText, text)
}

func TestLoadPolicyNotFound(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorIs(t, err, ErrNotFound)
}
