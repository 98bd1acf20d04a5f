package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrKey(t *testing.T) {
	key := strKey("email", "a@b.com")
	require.Len(t, key, 1)
	s, ok := key["email"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", s.Value)
}

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"attempts": 3})
	require.NoError(t, err)

	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "attempts"}, ue.Names)
	n, ok := ue.Values[":v0"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "3", n.Value)
}

func TestBuildUpdateExpr_MultipleFields(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"attempts": 1,
		"is_used":  true,
	})
	require.NoError(t, err)

	assert.Len(t, ue.Names, 2)
	assert.Len(t, ue.Values, 2)
	assert.Contains(t, ue.Expr, "SET ")
	assert.Contains(t, ue.Expr, ", ")
	// Every placeholder in the expression resolves to a name and a value.
	for nameKey := range ue.Names {
		assert.Contains(t, ue.Expr, nameKey)
	}
	for valueKey := range ue.Values {
		assert.Contains(t, ue.Expr, valueKey)
	}
}

func TestBuildUpdateExpr_Empty(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.Error(t, err)
}
