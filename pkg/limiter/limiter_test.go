package limiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ginContext(path string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", path, nil)
	return c
}

func TestMethodLimiterKey(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api", FillInterval: time.Second, Capacity: 10, Quantum: 10},
		BucketRule{Key: "/api/editor", FillInterval: time.Second, Capacity: 2, Quantum: 2},
	)

	assert.Equal(t, "/api/editor", l.Key(ginContext("/api/editor/abc/apply")))
	assert.Equal(t, "/api", l.Key(ginContext("/api/link/resolve")))
	assert.Equal(t, "/api", l.Key(ginContext("/api/editorial")))
	assert.Equal(t, "/other", l.Key(ginContext("/other")))
}

func TestMethodLimiterBucket(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api/editor", FillInterval: time.Hour, Capacity: 2, Quantum: 2},
		BucketRule{Key: "/invalid"},
	)

	bucket, ok := l.GetBucket("/api/editor")
	require.True(t, ok)
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(0), bucket.TakeAvailable(1))

	_, ok = l.GetBucket("/invalid")
	assert.False(t, ok)
}
