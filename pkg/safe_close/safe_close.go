// Package safe_close coordinates shutdown of long running goroutines
package safe_close

import "sync"

// SafeClose broadcasts one close signal to every attached goroutine and waits for them
// SafeClose 向所有挂载的协程广播关闭信号并等待其退出
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in a goroutine. fn must call done when it returns.
// Attach 在协程中运行 fn，fn 退出时必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	go fn(func() { once.Do(s.wg.Done) }, s.closeSignal)
}

// SendCloseSignal closes the signal channel; the first non-nil err is kept
// SendCloseSignal 发送关闭信号，保留第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	if err != nil {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
	s.once.Do(func() {
		close(s.closeSignal)
	})
}

// IsClosed 是否已发送关闭信号
func (s *SafeClose) IsClosed() bool {
	select {
	case <-s.closeSignal:
		return true
	default:
		return false
	}
}

// WaitClosed blocks until every attached goroutine has called done
// WaitClosed 等待所有挂载的协程退出
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
