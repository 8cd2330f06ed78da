package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeroshade/sgvdesk/internal/session"
)

const (
	sessionCookie = "sgv_session"
	sessionKey    = "session"
)

// SessionMiddleware attaches the caller's session, starting one when the
// cookie is missing or stale.
func SessionMiddleware(store *session.Store, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		sess, created, err := store.Get(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if created {
			c.SetCookie(sessionCookie, sess.ID, 0, "/", "", secure, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// lockSession locks the caller's session for the rest of the handler. A
// session that was ended while the request waited is answered with 410
// and left unlocked.
func lockSession(c *gin.Context) (*session.Session, bool) {
	sess := currentSession(c)
	sess.Lock()
	if sess.Closed() {
		sess.Unlock()
		c.JSON(http.StatusGone, gin.H{"error": "session ended"})
		return nil, false
	}
	return sess, true
}

func EndSession(store *session.Store, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		store.Close(currentSession(c).ID)
		c.SetCookie(sessionCookie, "", -1, "/", "", secure, true)
		c.Status(http.StatusNoContent)
	}
}
