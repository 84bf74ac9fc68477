package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dicehall/bot/common"
	"dicehall/domain/session"

	log "github.com/sirupsen/logrus"
)

// nameCacheTTL bounds how stale a shown nickname can be
const nameCacheTTL = 5 * time.Minute

type nameKey struct {
	guildID int64
	userID  int64
}

type cachedName struct {
	name    string
	expires time.Time
}

// IdentityResolver resolves guild display names for result boards, caching
// them so a busy round does not fan out one API call per player
type IdentityResolver struct {
	members common.MemberFetcher
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	names map[nameKey]cachedName
}

var _ session.IdentityResolver = (*IdentityResolver)(nil)

// NewIdentityResolver creates a resolver over the Discord session
func NewIdentityResolver(members common.MemberFetcher) *IdentityResolver {
	return &IdentityResolver{
		members: members,
		ttl:     nameCacheTTL,
		now:     time.Now,
		names:   make(map[nameKey]cachedName),
	}
}

// DisplayName returns the member's nickname, global name or username
func (r *IdentityResolver) DisplayName(ctx context.Context, guildID, userID int64) (string, error) {
	key := nameKey{guildID: guildID, userID: userID}

	r.mu.RLock()
	cached, ok := r.names[key]
	r.mu.RUnlock()
	if ok && r.now().Before(cached.expires) {
		return cached.name, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	member, err := r.members.GuildMember(strconv.FormatInt(guildID, 10), strconv.FormatInt(userID, 10))
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Debug("Failed to resolve member name")
		return "", fmt.Errorf("failed to fetch member %d: %w", userID, err)
	}
	if member == nil || member.User == nil {
		return "", fmt.Errorf("member %d has no user", userID)
	}

	name := member.DisplayName()
	r.mu.Lock()
	r.names[key] = cachedName{name: name, expires: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return name, nil
}

// Forget drops a cached name, used when a member changes their nickname
func (r *IdentityResolver) Forget(guildID, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, nameKey{guildID: guildID, userID: userID})
}
