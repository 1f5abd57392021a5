package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeSecretClient struct {
	mu     sync.Mutex
	values map[string]string
	calls  map[string]int
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{values: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.GetName()]++
	value, ok := f.values[req.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "missing")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}, nil
}

func (f *fakeSecretClient) Close() error { return nil }

func TestResolveCachesRemoteSecret(t *testing.T) {
	client := newFakeSecretClient()
	resource := "projects/praxis/secrets/recaptcha/versions/latest"
	client.values[resource] = "remote-secret"

	r := NewResolver(context.Background(), WithClient(client), WithProject("praxis"), WithFallbackFile(""))

	for i := 0; i < 2; i++ {
		got, err := r.Resolve(context.Background(), "secret://recaptcha")
		require.NoError(t, err)
		require.Equal(t, "remote-secret", got)
	}
	require.Equal(t, 1, client.calls[resource])
}

func TestResolveHonoursProjectAndVersion(t *testing.T) {
	client := newFakeSecretClient()
	client.values["projects/other/secrets/smtp/versions/3"] = "v3"

	r := NewResolver(context.Background(), WithClient(client), WithProject("praxis"), WithFallbackFile(""))
	got, err := r.Resolve(context.Background(), "secret://other/smtp/3")
	require.NoError(t, err)
	require.Equal(t, "v3", got)
}

func TestResolveFallsBackToLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".secrets.local")
	require.NoError(t, os.WriteFile(path, []byte("admin-token=local-admin\n"), 0o600))

	r := NewResolver(context.Background(), Offline(), WithFallbackFile(path))
	got, err := r.Resolve(context.Background(), "secret://admin-token")
	require.NoError(t, err)
	require.Equal(t, "local-admin", got)

	_, err = r.Resolve(context.Background(), "secret://missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestResolveRejectsInvalidReferences(t *testing.T) {
	r := NewResolver(context.Background(), Offline(), WithFallbackFile(""))
	for _, ref := range []string{"plain", "secret://", "secret://a//b", "secret://a/b/c/d"} {
		_, err := r.Resolve(context.Background(), ref)
		require.Truef(t, errors.Is(err, ErrInvalidReference), "ref %q: %v", ref, err)
	}
}
