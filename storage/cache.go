package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"tasklist-api/domain"
)

const listCacheKey = "tasks:list"

type backend interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	CreateTask(ctx context.Context, title, description string, pos domain.InsertPosition) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, title, description string) (domain.Task, error)
	ToggleTask(ctx context.Context, id int64) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ReorderTasks(ctx context.Context, assignments []domain.OrderAssignment) error
	Ping(ctx context.Context) error
}

// Cache wraps a Store with Redis-backed caching of the task list. Every
// mutation evicts the cached list so reads after a write always reflect
// canonical order. Redis being unreachable degrades to direct store reads.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if tasks, ok := c.loadList(ctx); ok {
		return tasks, nil
	}
	tasks, err := c.base.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	c.storeList(ctx, tasks)
	return tasks, nil
}

func (c *Cache) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return c.base.GetTask(ctx, id)
}

func (c *Cache) CreateTask(ctx context.Context, title, description string, pos domain.InsertPosition) (domain.Task, error) {
	t, err := c.base.CreateTask(ctx, title, description, pos)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return t, nil
}

func (c *Cache) UpdateTask(ctx context.Context, id int64, title, description string) (domain.Task, error) {
	t, err := c.base.UpdateTask(ctx, id, title, description)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return t, nil
}

func (c *Cache) ToggleTask(ctx context.Context, id int64) (domain.Task, error) {
	t, err := c.base.ToggleTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return t, nil
}

func (c *Cache) DeleteTask(ctx context.Context, id int64) error {
	if err := c.base.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) ReorderTasks(ctx context.Context, assignments []domain.OrderAssignment) error {
	if err := c.base.ReorderTasks(ctx, assignments); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.base.Ping(ctx)
}

func (c *Cache) loadList(ctx context.Context) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, listCacheKey).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.ConfigStd.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, listCacheKey).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeList(ctx context.Context, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.ConfigStd.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, listCacheKey, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, listCacheKey).Err()
}
