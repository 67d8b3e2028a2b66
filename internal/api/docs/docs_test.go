package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Freelance Marketplace API", doc.Info.Title)
	for _, path := range []string{
		"/auth/login",
		"/jobs/{id}/accept/{proposalId}",
		"/jobs/{id}/fund",
		"/jobs/{id}/approve",
		"/messages/job/{jobId}/{userId}",
		"/admin/payments/{id}",
		"/contact",
		"/contact/{id}/respond",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	kinds := doc.Components.Schemas["Error"].Value.Properties["kind"].Value.Enum
	assert.Len(t, kinds, 7)
}
