package equiledger

import (
	"net/http"

	"github.com/equiledger/equiledger/schema"
	"github.com/gin-gonic/gin"
)

// adminAuth gates privileged routes on a configured X-API-KEY.
func (l *Ledger) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-KEY")
		if key == "" || !l.config.IsAdminKey(key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, schema.RespErr{Err: "unauthorized"})
			return
		}
		c.Next()
	}
}
