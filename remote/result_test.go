package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFallbackPassesSuccessThrough(t *testing.T) {
	res := WithFallback(context.Background(), func(context.Context) Result[[]string] {
		return Ok([]string{"live"})
	}, []string{"demo"})

	require.True(t, res.OK)
	assert.Equal(t, []string{"live"}, res.Data)
	assert.False(t, res.UsedFallback())
}

func TestWithFallbackSubstitutesOnFailure(t *testing.T) {
	res := WithFallback(context.Background(), func(context.Context) Result[[]string] {
		return Fail[[]string](ApiError, "BOOM", "backend down")
	}, []string{"demo"})

	require.True(t, res.OK)
	assert.Equal(t, []string{"demo"}, res.Data)
	require.True(t, res.UsedFallback())
	assert.Equal(t, ApiError, res.Fallback.Kind)
	assert.Equal(t, "backend down", res.Fallback.Message)
	assert.Nil(t, res.Err)
}

func TestWithFallbackRecoversPanics(t *testing.T) {
	res := WithFallback(context.Background(), func(context.Context) Result[int] {
		panic("connection reset")
	}, 42)

	require.True(t, res.OK)
	assert.Equal(t, 42, res.Data)
	require.NotNil(t, res.Fallback)
	assert.Equal(t, NetworkError, res.Fallback.Kind)
	assert.Equal(t, "connection reset", res.Fallback.Message)
}

func TestDemoDataIsFresh(t *testing.T) {
	a := DemoCategories()
	a[0] = "changed"
	assert.Equal(t, "IT Sector", DemoCategories()[0])

	q := DemoGeneratedQuestions(GenerateRequest{Category: "Retail", QuestionCount: 2})
	assert.Equal(t, "Retail", q.Category)
	assert.Len(t, q.Questions, 2)
	for _, question := range q.Questions {
		assert.NoError(t, question.Validate())
	}
}
