package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// secretRefRegex matches ${secret:name} patterns in configuration values.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Resolver tries each provider in order until one returns the secret.
type Resolver struct {
	providers []SecretProvider
	logger    *slog.Logger
}

// NewResolver creates a resolver. Providers are tried in the order given.
func NewResolver(providers ...SecretProvider) *Resolver {
	return &Resolver{
		providers: providers,
		logger:    slog.Default().With("component", "secrets"),
	}
}

// HasReferences reports whether value contains a ${secret:name} reference.
func HasReferences(value string) bool {
	return secretRefRegex.MatchString(value)
}

// GetSecret retrieves a secret from the first provider that supports it.
func (r *Resolver) GetSecret(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, provider := range r.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			r.logger.Debug("provider failed to get secret",
				"provider", provider.Provider(),
				"name", redactSecretName(name),
				"error", err,
			)
			continue
		}

		r.logger.Debug("secret resolved",
			"provider", provider.Provider(),
			"name", redactSecretName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", redactSecretName(name), lastErr)
	}

	return "", fmt.Errorf("secret not found: %q (no provider supports this secret)", redactSecretName(name))
}

// ResolveReferences replaces every ${secret:name} in input with its value.
// Unresolved references are kept in the output and reported together.
func (r *Resolver) ResolveReferences(ctx context.Context, input string) (string, error) {
	var errs []string

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(secretRefRegex.FindStringSubmatch(match)[1])

		value, err := r.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err.Error())
			return match
		}
		return value
	})

	if len(errs) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %s", strings.Join(errs, "; "))
	}

	return output, nil
}

// redactSecretName shows the first and last 2 characters of a secret name.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
