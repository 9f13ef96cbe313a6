// Package limiter provides token bucket rate limiting keyed by request
package limiter

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 路由前缀
	Key string
	// FillInterval 放入令牌的间隔
	FillInterval time.Duration
	// Capacity 令牌桶容量
	Capacity int64
	// Quantum 每次放入的令牌数
	Quantum int64
}

// MethodLimiter limits requests by the longest registered path prefix
// MethodLimiter 按最长匹配的路由前缀限流
type MethodLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*ratelimit.Bucket
	keys    []string
}

// NewMethodLimiter 创建路由限流器
func NewMethodLimiter() *MethodLimiter {
	return &MethodLimiter{buckets: make(map[string]*ratelimit.Bucket)}
}

// Key returns the registered prefix matching the request path, or the bare path
func (l *MethodLimiter) Key(c *gin.Context) string {
	path := c.Request.URL.Path
	l.mu.RLock()
	defer l.mu.RUnlock()

	best := ""
	for _, k := range l.keys {
		if len(k) > len(best) && hasPathPrefix(path, k) {
			best = k
		}
	}
	if best == "" {
		return path
	}
	return best
}

func hasPathPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || prefix[len(prefix)-1] == '/' || path[len(prefix)] == '/'
}

// GetBucket 获取令牌桶
func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	bucket, ok := l.buckets[key]
	return bucket, ok
}

// AddBuckets 添加令牌桶，已存在的 Key 保持不变
func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		if _, ok := l.buckets[rule.Key]; ok {
			continue
		}
		if rule.FillInterval <= 0 || rule.Capacity <= 0 {
			continue
		}
		quantum := rule.Quantum
		if quantum <= 0 {
			quantum = 1
		}
		l.buckets[rule.Key] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, quantum)
		l.keys = append(l.keys, rule.Key)
	}
	return l
}
