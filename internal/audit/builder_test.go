package audit

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"claw_audit/internal/deployer"
	"claw_audit/internal/holders"
	"claw_audit/internal/model"
	"claw_audit/internal/rpcguard"
)

var errStubDown = errors.New("stub upstream down")

// stubSource 可配置故障的链上数据源替身，带调用计数
type stubSource struct {
	mu sync.Mutex

	supply   float64
	accounts []holders.Account
	flags    model.AuthorityFlags

	supplyErr error
	holderErr error
	authErr   error

	supplyCalls int
	holderCalls int
	authCalls   int
}

func (s *stubSource) FetchSupply(ctx context.Context, mint string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supplyCalls++
	if s.supplyErr != nil {
		return 0, s.supplyErr
	}
	return s.supply, nil
}

func (s *stubSource) FetchHolderAccounts(ctx context.Context, mint string) ([]holders.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holderCalls++
	if s.holderErr != nil {
		return nil, s.holderErr
	}
	return s.accounts, nil
}

func (s *stubSource) FetchAuthorityFlags(ctx context.Context, mint string) (*model.AuthorityFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCalls++
	if s.authErr != nil {
		return nil, s.authErr
	}
	f := s.flags
	return &f, nil
}

func (s *stubSource) calls() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supplyCalls, s.holderCalls, s.authCalls
}

func healthySource() *stubSource {
	return &stubSource{
		supply: 1000,
		accounts: []holders.Account{
			{Address: "Dep111", RawAmount: 150},
			{Address: "Holder2", RawAmount: 100},
			{Address: "Holder3", RawAmount: 50},
		},
		flags: model.AuthorityFlags{Supply: 1000, Decimals: 9},
	}
}

func testToken() *model.TokenSnapshot {
	return &model.TokenSnapshot{
		ID:        "tok-1",
		Name:      "Test Token",
		Ticker:    "TST",
		Address:   "Mint111",
		Deployer:  "Dep111",
		Age:       600,
		Mcap:      10000,
		Liquidity: 2000,
		Supply:    1_000_000_000,
		Holders:   100,
	}
}

func testEstimator() *deployer.Estimator {
	return deployer.NewEstimator(func(ctx context.Context, address string) (int, error) {
		return 50, nil
	}, "")
}

func TestGetAuditReport_LivePath(t *testing.T) {
	src := healthySource()
	guard := rpcguard.New(time.Second, 3)
	b := NewBuilder(src, guard, testEstimator())

	token := testToken()
	report := b.GetAuditReport(context.Background(), token)

	if !report.IsRealData {
		t.Error("上游健康时IsRealData应为true")
	}
	if report.RiskScore < 1 || report.RiskScore > 10 {
		t.Errorf("RiskScore = %v, 超出[1,10]范围", report.RiskScore)
	}
	if len(report.RiskFactors) == 0 {
		t.Error("因子列表不应为空")
	}
	if report.HolderAnalysis.TotalHolders != 3 {
		t.Errorf("TotalHolders = %d, want 3", report.HolderAnalysis.TotalHolders)
	}
	if report.Authorities == nil || report.DeployerHistory == nil {
		t.Fatal("权限与部署者历史不应为nil")
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt不应为零值")
	}

	cached, ok := b.CachedReport(token.Address)
	if !ok || cached != report {
		t.Error("报告应写入缓存")
	}
}

func TestGetAuditReport_HolderFetchFails(t *testing.T) {
	src := healthySource()
	src.holderErr = errStubDown
	guard := rpcguard.New(time.Second, 10)
	b := NewBuilder(src, guard, testEstimator())

	report := b.GetAuditReport(context.Background(), testToken())

	// 持仓采集失败降级为空分析，权限仍为实采数据
	if report.IsRealData {
		t.Error("持仓采集失败时IsRealData应为false")
	}
	if report.HolderAnalysis.Top10Percentage != 0 || report.HolderAnalysis.TotalHolders != 0 {
		t.Errorf("持仓失败时应使用空分析: %+v", report.HolderAnalysis)
	}
	if report.Authorities == nil {
		t.Error("权限采集成功，Authorities不应为nil")
	}
}

func TestGetAuditReport_AllFetchesFail(t *testing.T) {
	src := healthySource()
	src.supplyErr = errStubDown
	src.authErr = errStubDown
	guard := rpcguard.New(time.Second, 10)
	b := NewBuilder(src, guard, testEstimator())

	report := b.GetAuditReport(context.Background(), testToken())

	// 两路实时数据全挂，整体降级为合成报告
	if report.IsRealData {
		t.Error("全部失败时IsRealData应为false")
	}
	if len(report.HolderAnalysis.TopHolders) != 10 {
		t.Errorf("合成报告应有10条持仓, got %d", len(report.HolderAnalysis.TopHolders))
	}
	if report.RiskScore < 1 || report.RiskScore > 10 {
		t.Errorf("RiskScore = %v, 超出[1,10]范围", report.RiskScore)
	}
}

func TestGetAuditReport_BreakerTripsAndRecovers(t *testing.T) {
	src := healthySource()
	src.supplyErr = errStubDown
	src.authErr = errStubDown
	guard := rpcguard.New(time.Second, 3)
	guard.SetCooldown(time.Hour)
	b := NewBuilder(src, guard, testEstimator())

	token := testToken()

	// 每次调用产生2次失败，第二次调用后熔断
	b.GetAuditReport(context.Background(), token)
	if guard.ShouldBypass() {
		t.Fatal("2次失败后不应熔断")
	}
	b.GetAuditReport(context.Background(), token)
	if !guard.ShouldBypass() {
		t.Fatal("4次连续失败后应熔断")
	}

	// 熔断期间直接走合成路径，不触碰上游
	supplyBefore, _, authBefore := src.calls()
	report := b.GetAuditReport(context.Background(), token)
	if report.IsRealData {
		t.Error("熔断期间IsRealData应为false")
	}
	supplyAfter, _, authAfter := src.calls()
	if supplyAfter != supplyBefore || authAfter != authBefore {
		t.Error("熔断期间不应调用上游")
	}

	// 上游恢复，冷却期过后放行探测，实时路径回归
	src.mu.Lock()
	src.supplyErr = nil
	src.authErr = nil
	src.mu.Unlock()
	guard.SetCooldown(time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	report = b.GetAuditReport(context.Background(), token)
	if !report.IsRealData {
		t.Error("上游恢复后IsRealData应为true")
	}
	if guard.ShouldBypass() {
		t.Error("探测成功后熔断器应关闭")
	}
}

func TestGetAuditReport_CacheLastWriteWins(t *testing.T) {
	src := healthySource()
	guard := rpcguard.New(time.Second, 3)
	b := NewBuilder(src, guard, testEstimator())

	token := testToken()
	first := b.GetAuditReport(context.Background(), token)
	second := b.GetAuditReport(context.Background(), token)

	cached, ok := b.CachedReport(token.Address)
	if !ok {
		t.Fatal("缓存中应存在报告")
	}
	if cached != second {
		t.Error("缓存应保留最后一次写入的报告")
	}
	if first == second {
		t.Error("两次审计应生成独立的报告实例")
	}
}

func TestGenerateMockAudit(t *testing.T) {
	token := testToken()
	report := GenerateMockAudit(token)

	if report.IsRealData {
		t.Error("合成报告IsRealData应为false")
	}
	if report.RiskScore < 1 || report.RiskScore > 10 {
		t.Errorf("RiskScore = %v, 超出[1,10]范围", report.RiskScore)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt不应为零值")
	}

	analysis := report.HolderAnalysis
	if len(analysis.TopHolders) != 10 {
		t.Fatalf("TopHolders长度 = %d, want 10", len(analysis.TopHolders))
	}
	if !analysis.TopHolders[0].IsDeployer {
		t.Error("第一条持仓应为部署者钱包")
	}
	if analysis.TopHolders[0].Address != token.Deployer {
		t.Errorf("部署者持仓地址 = %s, want %s", analysis.TopHolders[0].Address, token.Deployer)
	}

	// 前10持仓占比之和必须与Top10Percentage一致
	sum := 0.0
	for _, h := range analysis.TopHolders {
		if h.Percentage < 0 {
			t.Errorf("持仓占比为负: %v", h.Percentage)
		}
		sum += h.Percentage
	}
	if math.Abs(sum-analysis.Top10Percentage) > 1e-6 {
		t.Errorf("持仓占比之和 = %v, want %v", sum, analysis.Top10Percentage)
	}

	if analysis.DevWalletPercentage > analysis.Top10Percentage {
		t.Errorf("DevWalletPercentage(%v)不应超过Top10Percentage(%v)",
			analysis.DevWalletPercentage, analysis.Top10Percentage)
	}
}

func TestGenerateMockAudit_DeployerHistoryStable(t *testing.T) {
	token := testToken()
	token.Deployer = "StableDeployer999"

	first := GenerateMockAudit(token)
	second := GenerateMockAudit(token)

	if *first.DeployerHistory != *second.DeployerHistory {
		t.Errorf("同一部署者的合成历史不一致: %+v != %+v",
			*first.DeployerHistory, *second.DeployerHistory)
	}
}
