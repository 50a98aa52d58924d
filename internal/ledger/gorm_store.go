package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 是账本状态的数据库实现，每个identity一行，整行Upsert。
// 单行的读-改-写由Ledger层的互斥锁串行化，这里只负责原子落盘。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建一个数据库存储。
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Load 读取identity的持久化状态，没有记录时返回零值状态。
func (g *GormStore) Load(identity string) (State, error) {
	var record Record
	err := g.db.Where("identity = ?", identity).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return record.toState(), nil
}

// Save 以Upsert方式整行重写identity的状态。
func (g *GormStore) Save(identity string, state State) error {
	record := Record{
		Identity:      identity,
		SpinsBanked:   state.SpinsBanked,
		LastClaimDay:  state.LastClaimDay,
		LastClaimAt:   state.LastClaimAt,
		LastAttemptAt: state.LastAttemptAt,
	}
	err := g.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"spins_banked", "last_claim_day", "last_claim_at", "last_attempt_at", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
