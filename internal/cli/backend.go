package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"sopgen/internal/client"
	"sopgen/internal/config"
	"sopgen/internal/controller"
	"sopgen/internal/sop"
)

// newBackend returns the generation endpoint client, or with local set a
// generator that calls the provider in-process.
func newBackend(cfg config.Config, local bool, endpointURL string) (controller.Backend, error) {
	if !local {
		return client.NewClient(firstNonEmpty(endpointURL, cfg.Client.Endpoint), cfg.Client.Timeout), nil
	}
	if !cfg.LLM.HasCredential() {
		return nil, fmt.Errorf("%s is not set", cfg.LLM.CredentialEnv)
	}
	gen, err := sop.FromConfig(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func firstNonEmpty(values ...string) string {
	return lo.CoalesceOrEmpty(lo.Map(values, func(v string, _ int) string {
		return strings.TrimSpace(v)
	})...)
}
