package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/maestro/internal/errors"
)

type stubClient struct {
	available bool
	closed    bool
}

func (s *stubClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "ok", FinishReason: "stop"}, nil
}

func (s *stubClient) IsAvailable() bool              { return s.available }
func (s *stubClient) Health(ctx context.Context) error { return nil }
func (s *stubClient) Close() error                   { s.closed = true; return nil }

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	client := &stubClient{available: true}

	require.NoError(t, reg.Register("default", client))

	got, err := reg.Get("default")
	require.NoError(t, err)
	assert.Same(t, Client(client), got)
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("default", &stubClient{}))
	assert.Error(t, reg.Register("default", &stubClient{}))
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nope")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProviderNotFound))
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("a", &stubClient{}))
	require.NoError(t, reg.Register("b", &stubClient{}))
	assert.ElementsMatch(t, []string{"a", "b"}, reg.List())
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := NewRegistry()
	a := &stubClient{}
	b := &stubClient{}
	require.NoError(t, reg.Register("a", a))
	require.NoError(t, reg.Register("b", b))

	require.NoError(t, reg.CloseAll())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Empty(t, reg.List())
}
