package bot

import "sync"

// ChatLocks serializes all work on one chat: conversation handling and
// report generation mutate the same live collection and session state,
// so the dispatcher and the scheduler share one instance.
type ChatLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewChatLocks() *ChatLocks {
	return &ChatLocks{locks: make(map[string]*sync.Mutex)}
}

func (c *ChatLocks) lockFor(chatID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[chatID] = lock
	}
	return lock
}

// Do runs fn while holding the chat's lock.
func (c *ChatLocks) Do(chatID string, fn func()) {
	lock := c.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()
	fn()
}
