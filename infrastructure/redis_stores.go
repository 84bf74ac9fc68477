package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"

	"github.com/redis/go-redis/v9"
)

const proposalKeyPrefix = "proposal:"

// NewRedisClient creates a go-redis client for the address
func NewRedisClient(addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis: address is required")
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// RedisProposalStore keeps pending marriage proposals until they expire
type RedisProposalStore struct {
	client redis.Cmdable
}

var _ interfaces.ProposalStore = (*RedisProposalStore)(nil)

// NewRedisProposalStore creates a proposal store
func NewRedisProposalStore(client redis.Cmdable) *RedisProposalStore {
	return &RedisProposalStore{client: client}
}

func proposalKey(guildID, targetID int64) string {
	return fmt.Sprintf("%s%d:%d", proposalKeyPrefix, guildID, targetID)
}

func (s *RedisProposalStore) Save(ctx context.Context, proposal *entities.Proposal, ttl time.Duration) error {
	data, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("failed to marshal proposal: %w", err)
	}
	if err := s.client.Set(ctx, proposalKey(proposal.GuildID, proposal.TargetID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store proposal: %w", err)
	}
	return nil
}

func (s *RedisProposalStore) Get(ctx context.Context, guildID, targetID int64) (*entities.Proposal, error) {
	data, err := s.client.Get(ctx, proposalKey(guildID, targetID)).Bytes()
	return decodeProposal(data, err)
}

func (s *RedisProposalStore) Take(ctx context.Context, guildID, targetID int64) (*entities.Proposal, error) {
	data, err := s.client.GetDel(ctx, proposalKey(guildID, targetID)).Bytes()
	return decodeProposal(data, err)
}

func decodeProposal(data []byte, err error) (*entities.Proposal, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal: %w", err)
	}
	var proposal entities.Proposal
	if err := json.Unmarshal(data, &proposal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal: %w", err)
	}
	return &proposal, nil
}

// RedisCooldownStore implements cooldowns as keys that expire
type RedisCooldownStore struct {
	client redis.Cmdable
}

var _ interfaces.CooldownStore = (*RedisCooldownStore)(nil)

// NewRedisCooldownStore creates a cooldown store
func NewRedisCooldownStore(client redis.Cmdable) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

func (s *RedisCooldownStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	ok, err := s.client.SetNX(ctx, "cooldown:"+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to set cooldown %s: %w", key, err)
	}
	if ok {
		return true, 0, nil
	}

	remaining, err := s.client.PTTL(ctx, "cooldown:"+key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read cooldown %s: %w", key, err)
	}
	if remaining < 0 {
		remaining = 0
	}
	return false, remaining, nil
}
