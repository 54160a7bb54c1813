package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDoc_UpvoteDocumentsUnauthenticatedStatus(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]struct {
			Description string                     `json:"description"`
			Responses   map[string]json.RawMessage `json:"responses"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	upvote, ok := doc.Paths["/projects/{id}/upvote"]
	require.True(t, ok)
	for _, method := range []string{"post", "delete"} {
		op, ok := upvote[method]
		require.True(t, ok, method)
		assert.Contains(t, op.Description, "401, not 403", method)
		assert.Contains(t, op.Responses, "401", method)
		assert.NotContains(t, op.Responses, "403", method)
	}
}
