package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// FileEmailStore 把每个成功claim的邮箱以小写、一行一条的形式追加到文件。
// 文件中出现过即视为已claim，没有过期——与最初的单机部署保持一致。
// 文件内容在打开时读入内存集合，之后只追加。
type FileEmailStore struct {
	mu   sync.Mutex
	path string
	seen map[string]struct{}
	file *os.File
}

// OpenFileEmailStore 打开（必要时创建）追加文件，并载入已有的邮箱。
func OpenFileEmailStore(path string) (*FileEmailStore, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("无法打开邮箱记录文件 %s: %w", path, err)
	}

	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line != "" {
			seen[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, fmt.Errorf("读取邮箱记录文件 %s 失败: %w", path, err)
	}

	fmt.Printf("邮箱记录文件已载入，共 %d 条。\n", len(seen))
	return &FileEmailStore{path: path, seen: seen, file: file}, nil
}

// ClaimEmail 尝试登记一次claim。追加写失败时不更新内存集合，
// 下次尝试仍会走写入路径。
func (f *FileEmailStore) ClaimEmail(email string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.seen[email]; exists {
		return false, nil
	}

	if _, err := f.file.WriteString(email + "\n"); err != nil {
		return false, fmt.Errorf("%w: 追加邮箱记录失败: %v", ErrStorageUnavailable, err)
	}
	if err := f.file.Sync(); err != nil {
		return false, fmt.Errorf("%w: 刷盘邮箱记录失败: %v", ErrStorageUnavailable, err)
	}

	f.seen[email] = struct{}{}
	return true, nil
}

// Close 关闭底层文件。
func (f *FileEmailStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// Count 返回已记录的邮箱数量。
func (f *FileEmailStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
