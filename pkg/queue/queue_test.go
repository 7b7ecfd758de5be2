package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client, nil), mr
}

func TestEnqueueDequeueRoundTrip(t *testing.T) {
	q, _ := testQueue(t)
	ctx := context.Background()

	payload := EmailPayload{RequestID: uuid.New(), RecipientEmail: "ops@example.com", Subject: "s", Body: "b"}
	require.NoError(t, q.EnqueueEmail(ctx, payload))

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypeEmail, job.Type)
	assert.Equal(t, 0, job.Attempt)
}

func TestRetryRequeuesBelowMaxAttempts(t *testing.T) {
	q, mr := testQueue(t)
	ctx := context.Background()

	require.NoError(t, q.EnqueuePhotoReconcile(ctx, PhotoReconcilePayload{PhotoID: uuid.New()}))
	job, err := q.Dequeue(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Retry(ctx, job))
	assert.Equal(t, 1, job.Attempt)

	jobs, err := mr.List(QueueJobs)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.False(t, mr.Exists(QueueDLQ))
}

func TestRetryMovesToDLQAfterMaxAttempts(t *testing.T) {
	q, mr := testQueue(t)
	ctx := context.Background()

	require.NoError(t, q.EnqueueEmail(ctx, EmailPayload{RequestID: uuid.New(), RecipientEmail: "ops@example.com"}))
	job, err := q.Dequeue(ctx)
	require.NoError(t, err)

	// Retries below the limit cycle through the jobs list.
	for job.Attempt+1 < MaxRetries {
		require.NoError(t, q.Retry(ctx, job))
		job, err = q.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)
	}

	// The retry that reaches the limit lands in the DLQ, not the jobs list.
	require.NoError(t, q.Retry(ctx, job))
	assert.Equal(t, MaxRetries, job.Attempt)
	assert.False(t, mr.Exists(QueueJobs))
	dlq, err := mr.List(QueueDLQ)
	require.NoError(t, err)
	assert.Len(t, dlq, 1)
}
