// internal/infra/secrets/provider_sm.go
package secrets

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var ErrNotConfigured = errors.New("secrets: provider not configured")

// ProviderSM reads secret values from Google Secret Manager. Used for the
// SendGrid API key so the mail credential never lives in plain env vars.
type ProviderSM struct {
	Client    *secretmanager.Client
	ProjectID string
}

func NewProviderSM(ctx context.Context, projectID string) (*ProviderSM, error) {
	pid := strings.TrimSpace(projectID)
	if pid == "" {
		return nil, errors.New("secrets: projectID is empty")
	}
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &ProviderSM{Client: c, ProjectID: pid}, nil
}

// Access reads the latest version of secretID and returns its payload.
func (p *ProviderSM) Access(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.Client == nil {
		return "", ErrNotConfigured
	}
	sid := strings.TrimSpace(secretID)
	if sid == "" {
		return "", errors.New("secrets: secretID is empty")
	}

	name := "projects/" + p.ProjectID + "/secrets/" + sid + "/versions/latest"
	resp, err := p.Client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("secrets: empty payload (" + name + ")")
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Close releases the underlying client.
func (p *ProviderSM) Close() error {
	if p == nil || p.Client == nil {
		return nil
	}
	return p.Client.Close()
}
