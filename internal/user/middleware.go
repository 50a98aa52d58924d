package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName 是浏览器identity Cookie的名称。
	CookieName = "wheel-user-id"
	// CookieMaxAge 是Cookie的有效期（一年）。
	CookieMaxAge = 365 * 24 * 60 * 60
	// IdentityKey 是identity在Gin上下文中的键名。
	IdentityKey = "identity"
)

// IsValidUUID 检查一个字符串是否是合法的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// NewIdentity 生成一个新的identity UUID (v7，时间有序)。
func NewIdentity() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// EnsureIdentityCookieMiddleware 确保浏览器携带一个格式正确的identity cookie。
// 缺失或格式不正确时生成一个新的并种下，同时写入本次请求的上下文——
// 账本状态就挂在这个identity上。
func EnsureIdentityCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := c.Cookie(CookieName)

		if err != nil || !IsValidUUID(identity) {
			if err != nil && err != http.ErrNoCookie {
				fmt.Printf("检测到无效的identity Cookie: %s, err: %v\n", identity, err)
			}
			fresh, genErr := NewIdentity()
			if genErr != nil {
				fmt.Printf("生成identity时发生错误: %v\n", genErr)
			} else {
				c.SetCookie(CookieName, fresh, CookieMaxAge, "/", "", false, true)
				identity = fresh
			}
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// LoadIdentityMiddleware 只读取cookie并放入上下文，不种新Cookie。
func LoadIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := c.Cookie(CookieName)
		c.Set(IdentityKey, identity)
		c.Next()
	}
}
