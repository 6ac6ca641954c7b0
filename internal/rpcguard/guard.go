package rpcguard

import (
	"context"
	"sync"
	"time"

	"claw_audit/internal/common"
)

// 默认熔断参数
const (
	DEFAULT_TIMEOUT      = 5 * time.Second
	DEFAULT_MAX_FAILURES = 3
	DEFAULT_COOLDOWN     = 30 * time.Second
)

// Status 熔断器当前状态
type Status struct {
	Connected     bool
	UsingFallback bool
	FailureCount  int
	LastError     string
	LastSuccess   time.Time
}

// Guard 对上游RPC调用统一施加超时，并统计连续失败次数作为全局熔断器。
// 结果在锁内按完成顺序应用，晚到的成功不会重置更新的失败状态。
type Guard struct {
	mu          sync.Mutex
	timeout     time.Duration
	maxFailures int
	cooldown    time.Duration

	failures    int
	tripped     bool
	trippedAt   time.Time
	lastError   string
	lastSuccess time.Time
}

// New 创建熔断器，timeout/maxFailures为0时使用默认值
func New(timeout time.Duration, maxFailures int) *Guard {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	if maxFailures <= 0 {
		maxFailures = DEFAULT_MAX_FAILURES
	}
	return &Guard{
		timeout:     timeout,
		maxFailures: maxFailures,
		cooldown:    DEFAULT_COOLDOWN,
	}
}

// SetCooldown 设置熔断后允许探测调用的冷却时间
func (g *Guard) SetCooldown(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cooldown = d
}

// Do 执行一次受保护的上游调用：施加固定超时，并把结果计入熔断统计
func (g *Guard) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(cctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-cctx.Done():
		// 超时只视为本次调用失败
		err = cctx.Err()
	}

	g.record(name, err)
	return err
}

// record 按完成顺序应用调用结果
func (g *Guard) record(name string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		g.failures = 0
		g.tripped = false
		g.lastError = ""
		g.lastSuccess = time.Now()
		return
	}

	g.failures++
	g.lastError = name + ": " + err.Error()
	common.Log.WithField("call", name).Warnf("上游调用失败(%d/%d): %v", g.failures, g.maxFailures, err)

	if g.failures >= g.maxFailures {
		if !g.tripped {
			common.Log.Warnf("连续失败%d次，熔断器打开，切换到合成数据", g.failures)
		}
		// 探测失败时同样刷新计时，重新进入完整冷却期
		g.tripped = true
		g.trippedAt = time.Now()
	}
}

// ShouldBypass 熔断打开时跳过实时路径，冷却期过后放行一次探测
func (g *Guard) ShouldBypass() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.tripped {
		return false
	}
	if g.cooldown > 0 && time.Since(g.trippedAt) >= g.cooldown {
		return false
	}
	return true
}

// Reset 手动复位熔断状态
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failures = 0
	g.tripped = false
	g.lastError = ""
}

// Status 读取当前状态
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Status{
		Connected:     !g.tripped,
		UsingFallback: g.tripped,
		FailureCount:  g.failures,
		LastError:     g.lastError,
		LastSuccess:   g.lastSuccess,
	}
}
