package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const saveList = "memory_save_jobs"

// SaveJob is a pending memory-store write. The queue is transit buffering
// only; the memory store remains the sole durable state.
type SaveJob struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

func NewSaveJob(content string, tags []string) SaveJob {
	return SaveJob{ID: uuid.NewString(), Content: content, Tags: tags}
}

type Queue struct {
	client *redis.Client
}

func New(url string) (*Queue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	return &Queue{client: client}, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Queue) PushSave(ctx context.Context, job SaveJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, saveList, payload).Err()
}

func (q *Queue) PopSave(ctx context.Context, timeout time.Duration) (SaveJob, error) {
	var job SaveJob
	res, err := q.client.BRPop(ctx, timeout, saveList).Result()
	if err != nil {
		return job, err
	}
	if len(res) < 2 {
		return job, redis.Nil
	}
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return job, err
	}
	return job, nil
}

func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, saveList).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
