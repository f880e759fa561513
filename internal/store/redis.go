package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"versebattle/internal/model"
)

// updateRetries bounds the optimistic-transaction retry loop.
const updateRetries = 5

// redisStore keeps each room as one JSON value and publishes a snapshot on
// the room's channel after every committed write.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed RoomStore. Rooms expire after 24h as
// a safety net; normal cleanup is the last player leaving.
func NewRedisStore(client *redis.Client) RoomStore {
	return &redisStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (s *redisStore) key(code string) string {
	return fmt.Sprintf("room:%s", code)
}

func (s *redisStore) channel(code string) string {
	return fmt.Sprintf("room:%s:events", code)
}

func (s *redisStore) publish(ctx context.Context, pipe redis.Cmdable, code string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		zap.S().Errorw("marshal room event", "room", code, "err", err)
		return
	}
	pipe.Publish(ctx, s.channel(code), data)
}

func (s *redisStore) Create(ctx context.Context, room *model.RoomState) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.key(room.Code), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomExists
	}

	s.publish(ctx, s.client, room.Code, Event{Room: room})
	return nil
}

func (s *redisStore) Get(ctx context.Context, code string) (*model.RoomState, error) {
	data, err := s.client.Get(ctx, s.key(code)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var room model.RoomState
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Update runs the mutator inside a WATCH transaction so two actors racing
// to trigger the same transition cannot clobber each other: the loser's
// write aborts and the mutator re-runs against the winner's state.
func (s *redisStore) Update(ctx context.Context, code string, mutate func(*model.RoomState) error) (*model.RoomState, error) {
	key := s.key(code)

	var result *model.RoomState
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var room model.RoomState
		if err := json.Unmarshal([]byte(data), &room); err != nil {
			return err
		}

		if err := mutate(&room); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = &room
				return nil
			}
			return err
		}

		updated, err := json.Marshal(&room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			s.publish(ctx, pipe, code, Event{Room: &room})
			return nil
		})
		if err != nil {
			return err
		}
		result = &room
		return nil
	}

	for i := 0; i < updateRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("room %s: update contention after %d retries", code, updateRetries)
}

func (s *redisStore) Delete(ctx context.Context, code string) error {
	if err := s.client.Del(ctx, s.key(code)).Err(); err != nil {
		return err
	}
	s.publish(ctx, s.client, code, Event{Deleted: true})
	return nil
}

func (s *redisStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(code)).Result()
	return n > 0, err
}

func (s *redisStore) Subscribe(ctx context.Context, code string) (<-chan Event, func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel(code))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				zap.S().Warnw("bad room event payload", "room", code, "err", err)
				continue
			}
			select {
			case out <- ev:
			default:
				// Slow consumer: drop rather than block the pubsub reader.
			}
		}
	}()

	cancel := func() { pubsub.Close() }
	return out, cancel, nil
}
