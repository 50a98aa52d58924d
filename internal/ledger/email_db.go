package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/platform/database"
)

// ClaimedEmailsKey 是一个Redis Set的键，缓存所有已claim的邮箱。
// Member: 归一化后的邮箱。真实来源是SQLite中的EmailClaim表，
// Redis重启后由RebuildEmailCache从数据库整体重建。
const ClaimedEmailsKey = "claim:emails"

// dbEmailMutex 串行化"检查+写入"的临界区，防止并发提交同一邮箱时双重放行。
var dbEmailMutex sync.Mutex

// DBEmailStore 是邮箱门控的持久化实现：Redis Set做O(1)去重缓存，
// SQLite的追加表做真实来源，两者写穿透。没有过期：一个邮箱只能用一次。
type DBEmailStore struct{}

// NewDBEmailStore 创建一个持久化邮箱门控。
func NewDBEmailStore() *DBEmailStore {
	return &DBEmailStore{}
}

// ClaimEmail 尝试登记一次claim。
// Redis不健康时返回ErrStorageUnavailable，上层降级为"无法claim"。
func (s *DBEmailStore) ClaimEmail(email string, now time.Time) (bool, error) {
	if !database.IsRedisHealthy() {
		return false, fmt.Errorf("%w: Redis不可用", ErrStorageUnavailable)
	}

	// 只读快速路径：缓存确认已存在则直接拒绝
	exists, err := database.RDB.SIsMember(database.Ctx, ClaimedEmailsKey, email).Result()
	if err != nil {
		return false, fmt.Errorf("%w: 查询邮箱缓存失败: %v", ErrStorageUnavailable, err)
	}
	if exists {
		return false, nil
	}

	return s.insertNewEmail(email)
}

// insertNewEmail 把一个新邮箱原子地写入SQLite和Redis。
func (s *DBEmailStore) insertNewEmail(email string) (bool, error) {
	dbEmailMutex.Lock()
	defer dbEmailMutex.Unlock()

	if !database.IsRedisHealthy() {
		return false, fmt.Errorf("%w: Redis不可用", ErrStorageUnavailable)
	}

	// 持有锁之后再查一次缓存，防止等锁期间其他请求已插入
	exists, _ := database.RDB.SIsMember(database.Ctx, ClaimedEmailsKey, email).Result()
	if exists {
		return false, nil
	}

	// 1. 开启SQLite事务，默认回滚，最后才提交
	tx := database.DB.Begin()
	if tx.Error != nil {
		return false, fmt.Errorf("%w: 无法开始数据库事务: %v", ErrStorageUnavailable, tx.Error)
	}
	defer tx.Rollback()

	claim := EmailClaim{Email: email}
	if err := tx.Create(&claim).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			// 说明Redis中的缓存曾丢失，以SQLite为准
			return false, nil
		}
		return false, fmt.Errorf("%w: 写入邮箱记录失败: %v", ErrStorageUnavailable, err)
	}

	// 2. 写入Redis缓存；失败则SQLite事务自动回滚
	if err := database.RDB.SAdd(database.Ctx, ClaimedEmailsKey, email).Err(); err != nil {
		return false, fmt.Errorf("%w: 写入邮箱缓存失败: %v", ErrStorageUnavailable, err)
	}

	// 3. 提交SQLite事务
	if err := tx.Commit().Error; err != nil {
		// SQLite提交失败但Redis已写入：只要Redis不丢，该邮箱已不可再用；
		// Redis若随后丢失，重建会以SQLite为准放开它。按成功静默返回。
		fmt.Printf("严重告警: 邮箱记录提交失败但缓存已写入, email: %s, 错误: %v\n", email, err)
	}
	return true, nil
}

// RecentEmailClaims 返回最近的claim记录，最新的在前，供管理接口使用。
func RecentEmailClaims(limit int) ([]EmailClaim, error) {
	var claims []EmailClaim
	err := database.DB.Model(&EmailClaim{}).Order("created_at desc").Limit(limit).Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("读取邮箱claim记录失败: %w", err)
	}
	return claims, nil
}

// RebuildEmailCache 从SQLite分批重建Redis中的邮箱缓存集合。
// 应用启动和Redis重启恢复时都会调用。
func RebuildEmailCache() error {
	fmt.Println("正在从数据库重建邮箱claim缓存...")

	dbEmailMutex.Lock()
	defer dbEmailMutex.Unlock()

	// 1. 擦除旧的缓存
	if err := database.RDB.Del(database.Ctx, ClaimedEmailsKey).Err(); err != nil {
		return fmt.Errorf("擦除旧的邮箱缓存失败: %w", err)
	}

	// 2. 分批读取所有已claim的邮箱并写回Redis
	const batchSize = 10000

	total := 0
	lastID := uint(0)
	for {
		var batch []EmailClaim
		err := database.DB.Model(&EmailClaim{}).Where("id > ?", lastID).Order("id asc").Limit(batchSize).Find(&batch).Error
		if err != nil {
			return fmt.Errorf("分批读取邮箱记录失败: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		members := make([]interface{}, len(batch))
		for i, claim := range batch {
			members[i] = claim.Email
		}
		if err := database.RDB.SAdd(database.Ctx, ClaimedEmailsKey, members...).Err(); err != nil {
			return fmt.Errorf("批量写回邮箱缓存失败: %w", err)
		}

		total += len(batch)
		lastID = batch[len(batch)-1].ID
		if len(batch) < batchSize {
			break
		}
	}

	fmt.Printf("邮箱claim缓存重建完成，共 %d 条。\n", total)
	return nil
}

// IsStorageUnavailable 判断一个错误是否代表存储不可用。
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
