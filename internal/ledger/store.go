package ledger

// Store 是账本状态的可插拔存储后端。
// 浏览器持久化、服务器内存表和数据库行都实现同一份契约：
// Load在没有持久化记录时返回默认零值状态，Save整份重写。
// 具体实现通过依赖注入选择，不做环境探测。
type Store interface {
	Load(identity string) (State, error)
	Save(identity string, state State) error
}
