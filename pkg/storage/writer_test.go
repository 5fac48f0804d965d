package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/process"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body

	return &s3.PutObjectOutput{}, nil
}

func testSummary() process.Summary {
	return process.Summarize([]resource.Instance{
		{Provider: resource.Hetzner, Type: resource.CloudServer, InstanceType: "cx11", PriceUSDHourly: 0.00594},
	}, nil, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s3Client := &fakeS3{objects: map[string][]byte{}}

	w := NewWriter(logger.NewLogger(zapcore.DebugLevel),
		NewLocalStore(dir),
		NewS3Store(s3Client, "pricing", "catalog/latest"),
	)

	instances := []resource.Instance{
		{Provider: resource.Hetzner, Type: resource.CloudServer, InstanceType: "cx11", Regions: []string{"fsn1"}},
	}

	require.NoError(t, w.Write(context.Background(), instances, testSummary()))

	body, err := os.ReadFile(filepath.Join(dir, InstancesArtifact))
	require.NoError(t, err)

	var written []map[string]any
	require.NoError(t, json.Unmarshal(body, &written))
	require.Len(t, written, 1)
	require.Equal(t, "cx11", written[0]["instanceType"])

	body, err = os.ReadFile(filepath.Join(dir, SummaryArtifact))
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal(body, &summary))

	for _, key := range []string{"totalInstances", "providersCount", "lastUpdated", "priceRange", "byProvider", "byType", "errors"} {
		require.Contains(t, summary, key)
	}

	require.Contains(t, s3Client.objects, "pricing/catalog/latest/all_instances.json")
	require.Contains(t, s3Client.objects, "pricing/catalog/latest/summary.json")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "no temporary files are left behind")
}

func TestWriter_Write_EmptyCatalog(t *testing.T) {
	dir := t.TempDir()

	w := NewWriter(logger.NewLogger(zapcore.DebugLevel), NewLocalStore(dir))
	require.NoError(t, w.Write(context.Background(), nil, process.Summarize(nil, nil, time.Now())))

	body, err := os.ReadFile(filepath.Join(dir, InstancesArtifact))
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(body))
}

func TestWriter_Write_Failure(t *testing.T) {
	s3Client := &fakeS3{objects: map[string][]byte{}, err: errors.New("access denied")}

	w := NewWriter(logger.NewLogger(zapcore.DebugLevel), NewS3Store(s3Client, "pricing", ""))
	err := w.Write(context.Background(), nil, testSummary())
	require.ErrorContains(t, err, "s3://pricing/all_instances.json")
	require.ErrorContains(t, err, "access denied")

	// a file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	w = NewWriter(logger.NewLogger(zapcore.DebugLevel), NewLocalStore(blocker))
	require.Error(t, w.Write(context.Background(), nil, testSummary()))
}
