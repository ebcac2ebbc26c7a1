package testutil

import (
	"context"
	"testing"
	"time"

	portalaws "github.com/USSTM/facility-portal/internal/aws"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestLocalStack struct {
	Container *localstack.LocalStackContainer
	Config    aws.Config
	Endpoint  string
}

func NewTestLocalStack(t *testing.T) *TestLocalStack {
	ctx := context.Background()

	container, err := localstack.Run(ctx,
		"localstack/localstack:3.0",
		testcontainers.WithReuseByName("facility-portal-test-localstack"),
		testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Env: map[string]string{
					"SERVICES": "s3",
				},
			},
		}),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Ready.").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("4566/tcp").
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start LocalStack container")

	endpoint, err := container.PortEndpoint(ctx, "4566/tcp", "http")
	require.NoError(t, err, "Failed to get LocalStack endpoint")

	credentialsProvider := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			SessionToken:    "test",
			Source:          "HardcodedCredentials",
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentialsProvider),
	)
	require.NoError(t, err, "Failed to load AWS config")

	ls := &TestLocalStack{
		Container: container,
		Config:    cfg,
		Endpoint:  endpoint,
	}

	t.Cleanup(func() {
		ls.Close()
	})

	return ls
}

// AuditBucket returns a created, empty bucket for audit snapshots.
func (ls *TestLocalStack) AuditBucket(t *testing.T, name string) *portalaws.AuditBucket {
	t.Helper()
	bucket := portalaws.NewAuditBucketFromConfig(ls.Config, ls.Endpoint, name)
	require.NoError(t, bucket.EnsureBucket(context.Background()))
	return bucket
}

func (ls *TestLocalStack) Close() {
	if ls.Container != nil {
		_ = ls.Container.Terminate(context.Background())
	}
}
