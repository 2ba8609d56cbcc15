package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_ServesAnswersInOrder(t *testing.T) {
	provider := Static("staging", "yes")

	answer, err := provider(context.Background(), "Which environment?")
	require.NoError(t, err)
	assert.Equal(t, "staging", answer)

	answer, err = provider(context.Background(), "Proceed?")
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
}

func TestStatic_FailsWhenExhausted(t *testing.T) {
	provider := Static("only one")

	_, err := provider(context.Background(), "first")
	require.NoError(t, err)

	_, err = provider(context.Background(), "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second")
}

func TestStatic_EmptyAlwaysFails(t *testing.T) {
	provider := Static()
	_, err := provider(context.Background(), "anything")
	assert.Error(t, err)
}
