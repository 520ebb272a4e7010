package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"protekt/internal/eligibility"
	"protekt/internal/platform/config"
	"protekt/internal/platform/logger"
)

func TestBuildAppWithoutInfrastructure(t *testing.T) {
	ctx := context.Background()
	a, err := buildApp(ctx, config.Config{}, logger.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "memory", a.backend)
	assert.Empty(t, a.healthChecks())
	require.NotNil(t, a.Policies)
	require.NotNil(t, a.Customers)
	require.NotNil(t, a.Claims)

	phone := "0977000001"
	assert.Equal(t, eligibility.Result{}, a.Eligibility.Check(ctx, &phone, nil))
}
