package ledger

import "time"

// EmailStore 以邮箱为identity做"同一邮箱至多claim一次"的门控。
// 与按浏览器记账的Ledger相比范围更窄：它阻止的是同一邮箱的重复claim，
// 门控窗口由具体实现决定（保留期、或永久）。
type EmailStore interface {
	// ClaimEmail 尝试登记一次claim。邮箱在门控窗口内已出现过则返回false。
	// 登记必须是原子的：并发提交同一邮箱时只有一个调用者得到true。
	ClaimEmail(email string, now time.Time) (bool, error)
}
