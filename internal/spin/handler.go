package spin

import (
	"net/http"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/user"
	"github.com/SlpAus/gluecksrad-wheel-backend/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler 持有抽奖相关HTTP接口的依赖。
type Handler struct {
	orch       *Orchestrator
	winHistory int
}

// NewHandler 创建抽奖接口处理器。winHistory非正数时使用默认条数。
func NewHandler(orch *Orchestrator, winHistory int) *Handler {
	if winHistory <= 0 {
		winHistory = DefaultWinHistory
	}
	return &Handler{orch: orch, winHistory: winHistory}
}

// claimRequestBody 是claim接口的请求体。
type claimRequestBody struct {
	Email string `json:"email" binding:"required"`
}

// ticketBody 是claim成功后下发、spin时带回的抽奖凭证。
type ticketBody struct {
	ClaimID   string `json:"claimId" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Day       string `json:"day" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// spinRequestBody 是spin接口的请求体。
type spinRequestBody struct {
	Ticket          ticketBody `json:"ticket" binding:"required"`
	CurrentRotation float64    `json:"currentRotation"`
}

// PostClaim 处理 POST /api/claim-spin。
// 成功时签发HMAC抽奖凭证；各类拒绝映射到对应的HTTP状态码。
func (h *Handler) PostClaim(c *gin.Context) {
	identity := c.GetString(user.IdentityKey)

	var body claimRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid JSON body"})
		return
	}

	outcome := h.orch.Claim(identity, body.Email, time.Now())

	switch outcome.Kind {
	case ClaimOK:
		ticket := token.SpinTicket{
			ClaimID: uuid.New().String(),
			Email:   outcome.Email,
			Day:     outcome.Day,
		}
		signature, err := token.GenerateTicketSignature(ticket)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Serverfehler"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"message":     outcome.Message,
			"spinsBanked": outcome.SpinsBanked,
			"seq":         outcome.Seq,
			"ticket": gin.H{
				"claimId":   ticket.ClaimID,
				"email":     ticket.Email,
				"day":       ticket.Day,
				"signature": signature,
			},
		})
	case ClaimInvalidEmail:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": outcome.Message, "seq": outcome.Seq})
	case ClaimEmailUsed, ClaimAlreadyToday:
		c.JSON(http.StatusConflict, gin.H{"ok": false, "message": outcome.Message, "spinsBanked": outcome.SpinsBanked, "seq": outcome.Seq})
	case ClaimDebounced, ClaimInFlight:
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "message": outcome.Message, "seq": outcome.Seq})
	default: // ClaimTldUnavailable, ClaimStorageDown
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": outcome.Message, "seq": outcome.Seq})
	}
}

// PostSpin 处理 POST /api/spin。
// 凭证签名、日期都校验通过后，才会消耗账本上的抽奖机会。
func (h *Handler) PostSpin(c *gin.Context) {
	identity := c.GetString(user.IdentityKey)
	now := time.Now()

	var body spinRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Invalid JSON body"})
		return
	}

	ticket := token.SpinTicket{
		ClaimID: body.Ticket.ClaimID,
		Email:   body.Ticket.Email,
		Day:     body.Ticket.Day,
	}
	if !token.ValidateTicketSignature(ticket, body.Ticket.Signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Ungueltiges Spin-Ticket."})
		return
	}
	if ticket.Day != h.orch.DayKey(now) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Spin-Ticket ist abgelaufen."})
		return
	}

	outcome, err := h.orch.Spin(identity, body.CurrentRotation, now)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "Service derzeit nicht verfuegbar."})
		return
	}
	if outcome.NoSpin {
		// 余额为零：重复提交同一张凭证也会落到这里，幂等安全
		c.JSON(http.StatusConflict, gin.H{"ok": false, "message": "Kein Dreh verfuegbar. Bitte zuerst E-Mail bestaetigen."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"label":       outcome.Label,
		"segment":     outcome.Segment,
		"rotation":    outcome.Rotation,
		"durationMs":  outcome.DurationMs,
		"spinsBanked": outcome.SpinsBanked,
	})
}

// GetState 处理 GET /api/spin/state，返回当前identity的账本视图。
func (h *Handler) GetState(c *gin.Context) {
	identity := c.GetString(user.IdentityKey)

	view, err := h.orch.State(identity, time.Now())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "Service derzeit nicht verfuegbar."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"state": view,
	})
}

// GetWins 处理 GET /api/spin/wins，返回展示用的最近中奖记录。
func (h *Handler) GetWins(c *gin.Context) {
	identity := c.GetString(user.IdentityKey)

	wins, err := h.orch.RecentWins(identity, h.winHistory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Serverfehler"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "wins": wins})
}

// GetPrizes 处理 GET /api/spin/prizes，返回固定的奖品表供前端绘制转盘。
func (h *Handler) GetPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "prizes": h.orch.Prizes()})
}
