package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartEnd_NoProvider(t *testing.T) {
	ctx, span := Start(context.Background(), "protekt/test", "op", attribute.String("k", "v"))
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() { End(span, errors.New("boom")) })
}
