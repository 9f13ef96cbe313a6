package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/link-editor-service/pkg/app"
	"github.com/haierkeys/link-editor-service/pkg/code"
	"github.com/haierkeys/link-editor-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter takes one token from the bucket of the matched route prefix.
// Requests without a bucket pass through. A rejected request carries Retry-After.
// RateLimiter 按路由前缀限流，拒绝时返回 Retry-After
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		bucket, ok := l.GetBucket(key)
		if !ok || bucket.TakeAvailable(1) > 0 {
			c.Next()
			return
		}

		wait := 1
		if rate := bucket.Rate(); rate > 0 {
			// seconds until one token is refilled; the epsilon absorbs float error
			wait = max(1, int(math.Ceil(1/rate-1e-6)))
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		app.NewResponse(c).ToResponse(code.ErrorTooManyRequests.WithDetails(key))
		c.Abort()
	}
}
