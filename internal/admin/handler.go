package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/ledger"
	"github.com/gin-gonic/gin"
)

// maxListedEmails 是单次返回的claim记录上限。
const maxListedEmails = 5000

// Handler 持有管理接口的依赖。
type Handler struct {
	token string
}

// NewHandler 创建管理接口处理器。token为空表示管理接口被禁用。
func NewHandler(token string) *Handler {
	return &Handler{token: token}
}

// authorized 校验Bearer令牌。
func (h *Handler) authorized(c *gin.Context) bool {
	if h.token == "" {
		return false
	}
	authHeader := c.GetHeader("Authorization")
	bearer, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return false
	}
	bearer = strings.TrimSpace(bearer)
	return subtle.ConstantTimeCompare([]byte(bearer), []byte(h.token)) == 1
}

// ListEmails 处理 GET /api/admin/emails。
// 返回最近claim成功的邮箱记录，最新的在前，最多maxListedEmails条。
func (h *Handler) ListEmails(c *gin.Context) {
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Unauthorized"})
		return
	}

	claims, err := ledger.RecentEmailClaims(maxListedEmails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Serverfehler"})
		return
	}

	type entry struct {
		Email     string `json:"email"`
		CreatedAt string `json:"created_at"`
	}
	data := make([]entry, len(claims))
	for i, claim := range claims {
		data[i] = entry{Email: claim.Email, CreatedAt: claim.CreatedAt.Format("2006-01-02T15:04:05Z07:00")}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}
