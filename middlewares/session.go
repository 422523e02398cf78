package middlewares

import (
	"crypto/sha256"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/hkdf"
)

const SessionName = "presstune_session"

// sessionKeys derives independent signing and encryption keys from one
// secret.
func sessionKeys(secret string) (hashKey, blockKey []byte, err error) {
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(SessionName))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err = io.ReadFull(reader, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(reader, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

// Sessions installs the encrypted cookie session that stores the access token
// for plain pages that cannot attach an Authorization header.
func Sessions(secret string, secure bool) (gin.HandlerFunc, error) {
	hashKey, blockKey, err := sessionKeys(secret)
	if err != nil {
		return nil, err
	}

	store := cookie.NewStore(hashKey, blockKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionName, store), nil
}
