package audit

import (
	"context"
	"sync"
	"time"

	"claw_audit/internal/common"
	"claw_audit/internal/deployer"
	"claw_audit/internal/holders"
	"claw_audit/internal/model"
	"claw_audit/internal/risk"
	"claw_audit/internal/rpcguard"
)

// DataSource 链上数据采集方契约
type DataSource interface {
	FetchSupply(ctx context.Context, mint string) (float64, error)
	FetchHolderAccounts(ctx context.Context, mint string) ([]holders.Account, error)
	FetchAuthorityFlags(ctx context.Context, mint string) (*model.AuthorityFlags, error)
}

// Builder 审计报告构建器：并发拉取三路上游数据，汇入评分器，
// 报告按代币地址缓存，后写覆盖先写
type Builder struct {
	src       DataSource
	guard     *rpcguard.Guard
	deployers *deployer.Estimator

	mu      sync.Mutex
	reports map[string]*model.AuditReport
}

// NewBuilder 创建审计报告构建器
func NewBuilder(src DataSource, guard *rpcguard.Guard, deployers *deployer.Estimator) *Builder {
	return &Builder{
		src:       src,
		guard:     guard,
		deployers: deployers,
		reports:   make(map[string]*model.AuditReport),
	}
}

// GetAuditReport 生成审计报告。永不失败：
// 实时数据不可用时降级到合成报告，通过IsRealData标记区分
func (b *Builder) GetAuditReport(ctx context.Context, token *model.TokenSnapshot) *model.AuditReport {
	// 熔断打开时直接走合成路径
	if b.guard.ShouldBypass() {
		common.Log.WithField("token", token.Address).Info("熔断器打开，使用合成审计数据")
		return b.store(GenerateMockAudit(token))
	}

	var (
		analysis *model.HolderAnalysis
		flags    *model.AuthorityFlags
		history  model.DeployerHistory

		holdersOK bool
		authOK    bool
	)

	// 三路上游并发拉取，各自独立处理失败，汇合点本身不会失败
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()

		var supply float64
		var accounts []holders.Account
		err := b.guard.Do(ctx, "holder_accounts", func(c context.Context) error {
			s, err := b.src.FetchSupply(c, token.Address)
			if err != nil {
				return err
			}
			accs, err := b.src.FetchHolderAccounts(c, token.Address)
			if err != nil {
				return err
			}
			supply = s
			accounts = accs
			return nil
		})
		if err != nil {
			analysis = holders.DefaultAnalysis()
			return
		}

		holdersOK = true
		analysis = holders.Analyze(accounts, supply, token.Deployer)
	}()

	go func() {
		defer wg.Done()

		var f *model.AuthorityFlags
		err := b.guard.Do(ctx, "authority_flags", func(c context.Context) error {
			var ferr error
			f, ferr = b.src.FetchAuthorityFlags(c, token.Address)
			return ferr
		})
		if err != nil {
			return
		}

		authOK = true
		flags = f
	}()

	go func() {
		defer wg.Done()
		// 估算器内部处理失败，始终返回可用记录
		history = b.deployers.GetHistory(ctx, token.Deployer)
	}()

	wg.Wait()

	// 持仓与权限两路全部失败时实时路径无可用输入，整体降级
	if !holdersOK && !authOK {
		common.Log.WithField("token", token.Address).Warn("实时数据全部不可用，使用合成审计数据")
		return b.store(GenerateMockAudit(token))
	}

	score, raw := risk.RefinedScore(token, analysis, flags, &history)
	factors := risk.LiveRiskFactors(token, analysis, flags, &history)

	common.Log.WithField("token", token.Address).Debugf("细粒度评分: raw=%d score=%.0f", raw, score)

	report := &model.AuditReport{
		Token:           token,
		HolderAnalysis:  analysis,
		RiskFactors:     factors,
		RiskScore:       score,
		DeployerHistory: &history,
		Authorities:     flags,
		GeneratedAt:     time.Now(),
		IsRealData:      holdersOK && authOK,
	}

	return b.store(report)
}

// CachedReport 读取缓存的审计报告
func (b *Builder) CachedReport(address string) (*model.AuditReport, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	report, ok := b.reports[address]
	return report, ok
}

// Status 当前上游连接状态
func (b *Builder) Status() rpcguard.Status {
	return b.guard.Status()
}

// store 写入报告缓存，后写覆盖先写
func (b *Builder) store(report *model.AuditReport) *model.AuditReport {
	b.mu.Lock()
	b.reports[report.Token.Address] = report
	b.mu.Unlock()
	return report
}
