package ledger

import (
	"sync"
	"time"
)

// DefaultEmailTTL 是内存后端中一条邮箱claim记录的保留时长。
const DefaultEmailTTL = 10 * time.Minute

// MemoryEmailStore 在内存中按邮箱做带保留期的claim去重。
// 记录过期后同一邮箱可以再次claim；进程重启即全部清空，
// 适用于无持久化依赖的函数式部署。
type MemoryEmailStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	claims map[string]time.Time
}

// NewMemoryEmailStore 创建一个内存邮箱门控，ttl<=0时使用默认保留期。
func NewMemoryEmailStore(ttl time.Duration) *MemoryEmailStore {
	if ttl <= 0 {
		ttl = DefaultEmailTTL
	}
	return &MemoryEmailStore{ttl: ttl, claims: make(map[string]time.Time)}
}

// cleanup 清除所有已过期的记录。调用方必须持有锁。
func (m *MemoryEmailStore) cleanup(now time.Time) {
	for email, claimedAt := range m.claims {
		if now.Sub(claimedAt) > m.ttl {
			delete(m.claims, email)
		}
	}
}

// ClaimEmail 尝试登记一次claim。
func (m *MemoryEmailStore) ClaimEmail(email string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cleanup(now)

	if _, exists := m.claims[email]; exists {
		return false, nil
	}
	m.claims[email] = now
	return true, nil
}
