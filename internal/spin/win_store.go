package spin

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// DefaultWinHistory 是展示用中奖记录的条数上限。
const DefaultWinHistory = 6

// WinStore 保存展示用的中奖记录。
type WinStore interface {
	Add(record WinRecord) error
	Recent(identity string, limit int) ([]WinEntry, error)
}

// GormWinStore 把中奖记录写入数据库。
type GormWinStore struct {
	db *gorm.DB
}

// NewGormWinStore 创建一个数据库中奖记录存储。
func NewGormWinStore(db *gorm.DB) *GormWinStore {
	return &GormWinStore{db: db}
}

// Add 追加一条中奖记录。
func (g *GormWinStore) Add(record WinRecord) error {
	if err := g.db.Create(&record).Error; err != nil {
		return fmt.Errorf("写入中奖记录失败: %w", err)
	}
	return nil
}

// Recent 返回identity最近的中奖条目，最新的在前。
func (g *GormWinStore) Recent(identity string, limit int) ([]WinEntry, error) {
	if limit <= 0 {
		limit = DefaultWinHistory
	}
	var records []WinRecord
	err := g.db.Where("identity = ?", identity).Order("created_at desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("读取中奖记录失败: %w", err)
	}
	entries := make([]WinEntry, len(records))
	for i, r := range records {
		entries[i] = WinEntry{Label: r.Label, Time: r.CreatedAt}
	}
	return entries, nil
}

// MemoryWinStore 是中奖记录的内存实现，用于测试和轻量部署。
type MemoryWinStore struct {
	mu      sync.Mutex
	records map[string][]WinRecord
}

// NewMemoryWinStore 创建一个内存中奖记录存储。
func NewMemoryWinStore() *MemoryWinStore {
	return &MemoryWinStore{records: make(map[string][]WinRecord)}
}

// Add 追加一条中奖记录（头插，最新的在前）。
func (m *MemoryWinStore) Add(record WinRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	m.records[record.Identity] = append([]WinRecord{record}, m.records[record.Identity]...)
	return nil
}

// Recent 返回identity最近的中奖条目。
func (m *MemoryWinStore) Recent(identity string, limit int) ([]WinEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = DefaultWinHistory
	}
	records := m.records[identity]
	if len(records) > limit {
		records = records[:limit]
	}
	entries := make([]WinEntry, len(records))
	for i, r := range records {
		entries[i] = WinEntry{Label: r.Label, Time: r.CreatedAt}
	}
	return entries, nil
}
