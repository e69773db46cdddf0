package inmemory

import (
	"sync"
	"time"

	userdomain "helphands-go/internal/domain/user"
)

// UserCache keeps resolved users for a short TTL so authenticated
// requests do not hit the database for every call.
type UserCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]userItem
}

type userItem struct {
	value     userdomain.User
	expiresAt time.Time
}

func NewUserCache(ttl time.Duration) *UserCache {
	return &UserCache{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]userItem),
	}
}

func (c *UserCache) Get(userID string) (*userdomain.User, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *UserCache) Set(user *userdomain.User) {
	if user == nil {
		return
	}
	if c.ttl <= 0 {
		c.Delete(user.ID)
		return
	}

	c.mu.Lock()
	c.items[user.ID] = userItem{
		value:     *user,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *UserCache) Delete(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

func (c *UserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
