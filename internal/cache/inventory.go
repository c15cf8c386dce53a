package cache

import (
	"fmt"
	"time"
)

const (
	HomeKey             = "forum:home"
	RevokedTokenPrefix  = "auth:revoked:%s"
	DefaultHomeCacheTTL = 30 * time.Minute
)

// RevokedTokenKey is the key marking a JWT ID as logged out.
func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}
