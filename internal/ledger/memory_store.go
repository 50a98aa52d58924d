package ledger

import "sync"

// MemoryStore 是账本状态的内存实现。
// 用于测试，以及不需要跨重启保留账本的轻量部署。
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

// NewMemoryStore 创建一个空的内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// Load 返回identity的当前状态，没有记录时返回零值状态。
func (m *MemoryStore) Load(identity string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[identity], nil
}

// Save 整份覆盖identity的状态。
func (m *MemoryStore) Save(identity string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[identity] = state
	return nil
}
