// Package awssm provides credential lookup via AWS Secrets Manager.
package awssm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// API is the subset of the Secrets Manager client used by Provider.
type API interface {
	GetSecretValue(
		ctx context.Context, params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// Provider fetches named credential bundles. Secrets are not cached: every
// call hits the store, so rotated credentials take effect immediately.
type Provider struct {
	client API
	logger *zap.Logger
}

// NewProvider creates a secret provider.
func NewProvider(client API, logger *zap.Logger) *Provider {
	return &Provider{client: client, logger: logger}
}

// GetSecret retrieves a secret by name and decodes its JSON key-value payload.
// All failures are wrapped with domain.ErrSecretAccess.
func (p *Provider) GetSecret(ctx context.Context, name string) (map[string]string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		p.logger.Error("get secret value", zap.String("secret", name), zap.Error(err))
		return nil, fmt.Errorf("get secret %s: %s: %w", name, err, domain.ErrSecretAccess)
	}

	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string payload: %w", name, domain.ErrSecretAccess)
	}

	var secret map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &secret); err != nil {
		p.logger.Error("decode secret payload", zap.String("secret", name), zap.Error(err))
		return nil, fmt.Errorf("decode secret %s: %s: %w", name, err, domain.ErrSecretAccess)
	}

	return secret, nil
}
