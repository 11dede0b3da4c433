// Package debounce 合并短时间内的连续调用，只在安静期结束后执行最后一次
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay 默认安静期
const DefaultDelay = 300 * time.Millisecond

// Debouncer 每次 Call 取消尚未执行的调用，并在 delay 后以最后一次的参数执行 fn
// fn 总是在独立的 goroutine 中执行，不会在 Call 内同步执行
type Debouncer[T any] struct {
	fn    func(T)
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	arg     T
	pending bool
}

// New 创建 Debouncer；delay <= 0 时使用 DefaultDelay
func New[T any](fn func(T), delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{fn: fn, delay: delay}
}

// Call 记录参数并重新计时
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.arg = arg
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// 计时器已触发但 Stop/Call 抢先拿到锁时，gen 不再匹配，直接丢弃
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.take()
	d.mu.Unlock()

	d.fn(arg)
}

// Stop 取消尚未执行的调用
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.take()
}

// Flush 立即执行尚未执行的调用（在调用方 goroutine 中）；没有待执行调用时返回 false
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	arg := d.take()
	d.mu.Unlock()

	d.fn(arg)
	return true
}

// Pending 是否有待执行的调用
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// take 必须持有锁
func (d *Debouncer[T]) take() T {
	arg := d.arg
	var zero T
	d.arg = zero
	d.pending = false
	d.timer = nil
	return arg
}
