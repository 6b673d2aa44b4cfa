package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                    { return s.name }
func (s stubChecker) Check(ctx context.Context) error { return s.err }

func TestReadyAllHealthy(t *testing.T) {
	report, err := NewService(stubChecker{name: "postgres"}, nil, stubChecker{name: "redis"}).Ready(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{"postgres": "ok", "redis": "ok"}, report)
}

func TestReadyReportsEveryFailure(t *testing.T) {
	svc := NewService(
		stubChecker{name: "postgres", err: errors.New("timeout")},
		stubChecker{name: "redis", err: errors.New("refused")},
	)

	report, err := svc.Ready(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: timeout")
	assert.Contains(t, err.Error(), "redis: refused")
	assert.Equal(t, "timeout", report["postgres"])
	assert.Equal(t, "refused", report["redis"])
}
