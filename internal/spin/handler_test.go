package spin_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SlpAus/gluecksrad-wheel-backend/internal/ledger"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/spin"
	"github.com/SlpAus/gluecksrad-wheel-backend/internal/user"
	"github.com/SlpAus/gluecksrad-wheel-backend/pkg/token"
	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	token.GenerateSecretKey()

	o := newOrchestrator(ledger.NewMemoryEmailStore(10*time.Minute), ledger.NewMemoryStore())
	handler := spin.NewHandler(o, 6)

	r := gin.New()
	r.POST("/api/claim-spin", user.EnsureIdentityCookieMiddleware(), handler.PostClaim)
	spinRoutes := r.Group("/api/spin", user.LoadIdentityMiddleware())
	{
		spinRoutes.POST("", handler.PostSpin)
		spinRoutes.GET("/state", handler.GetState)
		spinRoutes.GET("/wins", handler.GetWins)
		spinRoutes.GET("/prizes", handler.GetPrizes)
	}
	return r
}

func doJSON(r *gin.Engine, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", fmt.Sprintf("%s=%s", user.CookieName, cookie))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func identityFrom(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == user.CookieName {
			return c.Value
		}
	}
	return ""
}

func TestClaimSpinEndpoints(t *testing.T) {
	Convey("Given the spin API", t, func() {
		r := newTestRouter()

		Convey("When claiming without an identity cookie", func() {
			w := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "test@example.com"}, "")

			Convey("Then a cookie is planted and the claim succeeds", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(identityFrom(w), ShouldNotBeEmpty)
				So(user.IsValidUUID(identityFrom(w)), ShouldBeTrue)

				var body struct {
					OK          bool `json:"ok"`
					SpinsBanked int  `json:"spinsBanked"`
					Ticket      struct {
						ClaimID   string `json:"claimId"`
						Email     string `json:"email"`
						Day       string `json:"day"`
						Signature string `json:"signature"`
					} `json:"ticket"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.OK, ShouldBeTrue)
				So(body.SpinsBanked, ShouldEqual, 1)
				So(body.Ticket.Signature, ShouldNotBeEmpty)
				So(body.Ticket.Email, ShouldEqual, "test@example.com")
			})
		})

		Convey("When claiming with an invalid email", func() {
			w := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "john..doe@example.com"}, "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When claiming with a malformed body", func() {
			w := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"mail": "test@example.com"}, "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the same identity claims twice on one day", func() {
			first := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "one@example.com"}, "")
			So(first.Code, ShouldEqual, http.StatusOK)
			identity := identityFrom(first)

			second := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "two@example.com"}, identity)
			So(second.Code, ShouldEqual, http.StatusConflict) // 当天的门控已关闭
		})

		Convey("When a second identity reuses a claimed email", func() {
			first := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "shared@example.com"}, "")
			So(first.Code, ShouldEqual, http.StatusOK)

			second := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "shared@example.com"}, "")
			So(second.Code, ShouldEqual, http.StatusConflict)
		})
	})
}

func TestSpinEndpoint(t *testing.T) {
	Convey("Given an identity with a banked spin", t, func() {
		r := newTestRouter()

		claimResp := doJSON(r, http.MethodPost, "/api/claim-spin", gin.H{"email": "test@example.com"}, "")
		So(claimResp.Code, ShouldEqual, http.StatusOK)
		identity := identityFrom(claimResp)

		var claimBody struct {
			Ticket map[string]any `json:"ticket"`
		}
		So(json.Unmarshal(claimResp.Body.Bytes(), &claimBody), ShouldBeNil)

		Convey("When spinning with the issued ticket", func() {
			w := doJSON(r, http.MethodPost, "/api/spin", gin.H{
				"ticket":          claimBody.Ticket,
				"currentRotation": 0,
			}, identity)

			Convey("Then the spin succeeds and spends the balance", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var body struct {
					OK          bool    `json:"ok"`
					Label       string  `json:"label"`
					Segment     int     `json:"segment"`
					Rotation    float64 `json:"rotation"`
					DurationMs  int     `json:"durationMs"`
					SpinsBanked int     `json:"spinsBanked"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.OK, ShouldBeTrue)
				So(body.Label, ShouldNotBeEmpty)
				So(body.Rotation, ShouldBeGreaterThan, 0)
				So(body.DurationMs, ShouldBeGreaterThanOrEqualTo, 4200)
				So(body.SpinsBanked, ShouldEqual, 0)
			})

			Convey("Then replaying the same ticket is refused", func() {
				second := doJSON(r, http.MethodPost, "/api/spin", gin.H{
					"ticket":          claimBody.Ticket,
					"currentRotation": 0,
				}, identity)
				So(second.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("Then the win shows up in the history", func() {
				wins := doJSON(r, http.MethodGet, "/api/spin/wins", nil, identity)
				So(wins.Code, ShouldEqual, http.StatusOK)
				So(wins.Body.String(), ShouldContainSubstring, "Rabatt")
			})
		})

		Convey("When spinning with a tampered ticket", func() {
			tampered := make(map[string]any, len(claimBody.Ticket))
			for k, v := range claimBody.Ticket {
				tampered[k] = v
			}
			tampered["email"] = "other@example.com"

			w := doJSON(r, http.MethodPost, "/api/spin", gin.H{
				"ticket":          tampered,
				"currentRotation": 0,
			}, identity)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When querying the ledger state", func() {
			w := doJSON(r, http.MethodGet, "/api/spin/state", nil, identity)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"spinsBanked":1`)
			So(w.Body.String(), ShouldContainSubstring, `"claimedToday":true`)
		})

		Convey("When fetching the prize table", func() {
			w := doJSON(r, http.MethodGet, "/api/spin/prizes", nil, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "80% Rabatt")
		})
	})
}
