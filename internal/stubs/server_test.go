package stubs

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/event"
)

func newClient(t *testing.T, srv *Server) *adapters.HTTPSource {
	t.Helper()
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	src, err := adapters.NewHTTPSource(adapters.HTTPSourceConfig{BaseURL: ts.URL})
	require.NoError(t, err)
	return src
}

func TestGenerateRoundTrip(t *testing.T) {
	src := newClient(t, NewServer(event.NewGeneratorSeeded(7)))

	ev, err := src.Generate(context.Background(), adapters.GenerateRequest{Type: event.TypeMacro})
	require.NoError(t, err)
	assert.Equal(t, event.TypeMacro, ev.Type)
	assert.NotEmpty(t, ev.RuntimeID)
	assert.NotEmpty(t, ev.Title)
}

func TestGenerateForceBlackSwan(t *testing.T) {
	src := newClient(t, NewServer(event.NewGeneratorSeeded(7)))

	ev, err := src.Generate(context.Background(), adapters.GenerateRequest{ForceBlackSwan: true})
	require.NoError(t, err)
	assert.Equal(t, event.TypeBlackSwan, ev.Type)
	assert.Negative(t, ev.ImpactPct)
}

func TestInjectedFailure(t *testing.T) {
	srv := NewServer(event.NewGeneratorSeeded(7))
	src := newClient(t, srv)
	srv.FailNext(1)

	_, err := src.Generate(context.Background(), adapters.GenerateRequest{})
	assert.Error(t, err)

	ev, err := src.Generate(context.Background(), adapters.GenerateRequest{})
	require.NoError(t, err, "failure budget exhausted")
	assert.NotNil(t, ev)
}

func TestFallbackRecoversFromStubFailure(t *testing.T) {
	srv := NewServer(event.NewGeneratorSeeded(7))
	src := newClient(t, srv)
	srv.FailNext(1)

	fb := adapters.NewFallbackSource(src, adapters.NewLocalSource(event.NewGeneratorSeeded(9)))
	ev, err := fb.Generate(context.Background(), adapters.GenerateRequest{Type: event.TypeMicro})
	require.NoError(t, err)
	assert.Equal(t, event.TypeMicro, ev.Type)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := httptest.NewServer(NewServer(nil).Routes())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/events/generate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 405, resp.StatusCode)
}
