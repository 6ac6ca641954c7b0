package rpcguard

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func failing(ctx context.Context) error { return errUpstream }

func healthy(ctx context.Context) error { return nil }

func TestGuard_TripsAfterConsecutiveFailures(t *testing.T) {
	g := New(time.Second, 3)
	g.SetCooldown(time.Hour)

	for i := 0; i < 2; i++ {
		if err := g.Do(context.Background(), "test_call", failing); err == nil {
			t.Fatal("失败调用应返回错误")
		}
		if g.ShouldBypass() {
			t.Fatalf("第%d次失败后不应熔断", i+1)
		}
	}

	g.Do(context.Background(), "test_call", failing)

	if !g.ShouldBypass() {
		t.Error("连续3次失败后应熔断")
	}

	status := g.Status()
	if status.Connected {
		t.Error("熔断后Connected应为false")
	}
	if !status.UsingFallback {
		t.Error("熔断后UsingFallback应为true")
	}
	if status.FailureCount != 3 {
		t.Errorf("FailureCount = %d, want 3", status.FailureCount)
	}
	if status.LastError == "" {
		t.Error("LastError不应为空")
	}
}

func TestGuard_SuccessResetsFailures(t *testing.T) {
	g := New(time.Second, 3)
	g.SetCooldown(time.Hour)

	g.Do(context.Background(), "test_call", failing)
	g.Do(context.Background(), "test_call", failing)

	if err := g.Do(context.Background(), "test_call", healthy); err != nil {
		t.Fatalf("成功调用返回错误: %v", err)
	}

	status := g.Status()
	if status.FailureCount != 0 {
		t.Errorf("成功后FailureCount = %d, want 0", status.FailureCount)
	}
	if status.LastError != "" {
		t.Errorf("成功后LastError = %q, want 空", status.LastError)
	}
	if status.LastSuccess.IsZero() {
		t.Error("成功后LastSuccess不应为零值")
	}

	// 失败计数已清零，需重新累计3次才会熔断
	g.Do(context.Background(), "test_call", failing)
	g.Do(context.Background(), "test_call", failing)
	if g.ShouldBypass() {
		t.Error("成功复位后2次失败不应熔断")
	}
}

func TestGuard_SuccessClosesTrippedBreaker(t *testing.T) {
	g := New(time.Second, 3)
	g.SetCooldown(time.Hour)

	for i := 0; i < 3; i++ {
		g.Do(context.Background(), "test_call", failing)
	}
	if !g.ShouldBypass() {
		t.Fatal("前置条件失败：熔断器未打开")
	}

	g.Do(context.Background(), "test_call", healthy)

	if g.ShouldBypass() {
		t.Error("成功调用后熔断器应关闭")
	}
}

func TestGuard_Timeout(t *testing.T) {
	g := New(20*time.Millisecond, 3)

	slow := func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := g.Do(context.Background(), "slow_call", slow)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}

	if g.Status().FailureCount != 1 {
		t.Errorf("超时应计入失败, FailureCount = %d", g.Status().FailureCount)
	}
}

func TestGuard_CooldownProbe(t *testing.T) {
	g := New(time.Second, 3)
	g.SetCooldown(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		g.Do(context.Background(), "test_call", failing)
	}
	if !g.ShouldBypass() {
		t.Fatal("前置条件失败：熔断器未打开")
	}

	time.Sleep(20 * time.Millisecond)

	// 冷却期已过，放行探测
	if g.ShouldBypass() {
		t.Error("冷却期过后应放行探测调用")
	}
}

func TestGuard_FailedProbeReopensBreaker(t *testing.T) {
	g := New(time.Second, 3)
	g.SetCooldown(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		g.Do(context.Background(), "test_call", failing)
	}
	time.Sleep(20 * time.Millisecond)
	if g.ShouldBypass() {
		t.Fatal("前置条件失败：冷却期过后未放行探测")
	}

	// 探测失败，熔断器重新计时，持续故障期间继续绕过实时路径
	g.Do(context.Background(), "test_call", failing)
	if !g.ShouldBypass() {
		t.Error("探测失败后应重新进入冷却期并继续绕过")
	}

	// 再次冷却后仍只放行一次探测
	time.Sleep(20 * time.Millisecond)
	if g.ShouldBypass() {
		t.Error("第二个冷却期过后应再次放行探测")
	}
	g.Do(context.Background(), "test_call", failing)
	if !g.ShouldBypass() {
		t.Error("第二次探测失败后应继续绕过")
	}
}

func TestGuard_Reset(t *testing.T) {
	g := New(time.Second, 3)
	g.SetCooldown(time.Hour)

	for i := 0; i < 3; i++ {
		g.Do(context.Background(), "test_call", failing)
	}

	g.Reset()

	if g.ShouldBypass() {
		t.Error("Reset后不应熔断")
	}
	status := g.Status()
	if status.FailureCount != 0 || status.LastError != "" {
		t.Errorf("Reset后状态未清空: %+v", status)
	}
}

func TestGuard_Defaults(t *testing.T) {
	g := New(0, 0)

	if g.timeout != DEFAULT_TIMEOUT {
		t.Errorf("timeout = %v, want %v", g.timeout, DEFAULT_TIMEOUT)
	}
	if g.maxFailures != DEFAULT_MAX_FAILURES {
		t.Errorf("maxFailures = %d, want %d", g.maxFailures, DEFAULT_MAX_FAILURES)
	}
	if g.cooldown != DEFAULT_COOLDOWN {
		t.Errorf("cooldown = %v, want %v", g.cooldown, DEFAULT_COOLDOWN)
	}
}
