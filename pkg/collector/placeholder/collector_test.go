package placeholder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

func TestCollector_Collect(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	for _, provider := range []resource.Provider{resource.Azure, resource.GCP} {
		c := NewCollector(provider, zap.New(core).Sugar())
		require.Equal(t, provider, c.Provider())

		records, err := c.Collect(context.Background())
		require.NoError(t, err)
		require.NotNil(t, records)
		require.Empty(t, records)
	}

	require.Equal(t, 2, logs.FilterMessage("provider collector is not implemented, returning no records").Len())
}
