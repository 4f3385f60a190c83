package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dorm-finder/internal/compare"
)

// SessionCookie names the cookie carrying an anonymous visitor's session id.
const SessionCookie = "dorm_session"

// CtxCompareKey is the context key of the comparison set storage key.
const CtxCompareKey = "compare_key"

const sessionMaxAge = 30 * 24 * time.Hour

// CompareScope picks the comparison set a request works on. Signed-in users
// get their account's set; anonymous visitors get one tied to a session
// cookie, which is issued on first use. Run it after OptionalJWT.
func CompareScope(secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := UserID(c); uid != 0 {
				c.Set(CtxCompareKey, compare.KeyForUser(uid))
				return next(c)
			}
			c.Set(CtxCompareKey, compare.KeyForAnon(sessionID(c, secureCookie)))
			return next(c)
		}
	}
}

// sessionID returns the visitor's session id, issuing a cookie when the
// request has no valid one.
func sessionID(c echo.Context, secure bool) string {
	if ck, err := c.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// CompareKey returns the storage key chosen by CompareScope.
func CompareKey(c echo.Context) string {
	k, _ := c.Get(CtxCompareKey).(string)
	return k
}

// Identity names the visitor behind a request: the user id when signed in,
// else the session cookie. It is empty for a visitor with neither.
func Identity(c echo.Context) string {
	if uid := UserID(c); uid != 0 {
		return "u" + strconv.FormatUint(uid, 10)
	}
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return "s" + ck.Value
	}
	return ""
}
