package tld

import (
	"regexp"
	"strings"
	"sync"
)

// 合法的TLD token只有两种形态：2-63个小写字母，或punycode标签。
var (
	asciiTldRe    = regexp.MustCompile(`^[a-z]{2,63}$`)
	punycodeTldRe = regexp.MustCompile(`^xn--[a-z0-9-]{1,59}$`)
)

// Set 保存当前已加载的合法TLD集合。
// 集合未加载成功时，邮箱校验必须报告"TLD列表不可用"而不是将所有TLD判为非法。
type Set struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewSet 创建一个空的、尚未加载的TLD集合。
func NewSet() *Set {
	return &Set{}
}

// isValidToken 检查单个TLD token的形态是否合法。
func isValidToken(token string) bool {
	if len(token) > 63 {
		return false
	}
	return asciiTldRe.MatchString(token) || punycodeTldRe.MatchString(token)
}

// Replace 用一个新的TLD列表原子地替换整个集合。
// 列表会被trim、转小写并剔除形态非法的token；清洗后为空则替换失败，保留旧数据。
func (s *Set) Replace(list []string) (int, bool) {
	cleaned := make(map[string]struct{}, len(list))
	for _, raw := range list {
		token := strings.ToLower(strings.TrimSpace(raw))
		if isValidToken(token) {
			cleaned[token] = struct{}{}
		}
	}
	if len(cleaned) == 0 {
		return 0, false
	}

	s.mu.Lock()
	s.tokens = cleaned
	s.mu.Unlock()
	return len(cleaned), true
}

// Contains 精确查询一个小写TLD是否在集合中。
func (s *Set) Contains(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Available 报告集合是否已成功加载且非空。
func (s *Set) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens) > 0
}

// Count 返回当前集合中的TLD数量。
func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
