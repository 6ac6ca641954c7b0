package risk

import (
	"fmt"
	"math"

	"claw_audit/internal/authority"
	"claw_audit/internal/common"
	"claw_audit/internal/model"
)

// 细粒度路径：在链上数据完整时使用，先累加0-100的原始风险，
// 再映射到1-10的展示分数。与粗粒度路径量纲不同，但方向一致。

// HolderRisk 持仓风险子分数 (0-70)
func HolderRisk(analysis *model.HolderAnalysis) int {
	risk := 0

	if analysis.Top10Percentage > 80 {
		risk += 30
	} else if analysis.Top10Percentage > 60 {
		risk += 20
	} else if analysis.Top10Percentage > 40 {
		risk += 10
	}

	if analysis.DevWalletPercentage > 30 {
		risk += 20
	} else if analysis.DevWalletPercentage > 20 {
		risk += 10
	}

	if analysis.TotalHolders < 10 {
		risk += 20
	} else if analysis.TotalHolders < 50 {
		risk += 10
	}

	return risk
}

// DeployerRisk 部署者风险子分数 (0-40)
func DeployerRisk(history *model.DeployerHistory) int {
	if history == nil || history.TokensDeployed == 0 {
		return 0
	}

	rugRate := float64(history.RuggedCount) / float64(history.TokensDeployed)

	if rugRate > 0.7 {
		return 40 // 惯犯
	}
	if rugRate > 0.4 {
		return 30
	}
	if rugRate > 0.2 {
		return 15
	}
	return 0
}

// AgeRisk 代币年龄风险子分数 (0-10)
func AgeRisk(age int64) int {
	if age < 300 {
		return 10
	}
	if age < 1800 {
		return 5
	}
	return 0
}

// RefinedScore 细粒度评分：各子分数求和夹到100，再映射到1-10
func RefinedScore(
	token *model.TokenSnapshot,
	analysis *model.HolderAnalysis,
	flags *model.AuthorityFlags,
	history *model.DeployerHistory,
) (score float64, raw int) {
	raw = authority.Risk(flags) + HolderRisk(analysis) + DeployerRisk(history) + AgeRisk(token.Age)
	if raw > 100 {
		raw = 100
	}

	score = math.Max(1, math.Min(10, math.Round(float64(raw)/10)))
	return score, raw
}

// LiveRiskFactors 细粒度路径的风险因子列表，插入顺序即评估顺序
func LiveRiskFactors(
	token *model.TokenSnapshot,
	analysis *model.HolderAnalysis,
	flags *model.AuthorityFlags,
	history *model.DeployerHistory,
) []model.RiskFactor {
	factors := []model.RiskFactor{}

	// 权限风险
	if flags != nil && flags.HasMintAuthority {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: "MINT AUTHORITY ENABLED - CAN CREATE UNLIMITED TOKENS",
			Impact:  2,
		})
	}
	if flags != nil && flags.HasFreezeAuthority {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: "FREEZE AUTHORITY ENABLED - CAN LOCK YOUR TOKENS",
			Impact:  1.5,
		})
	}

	// 持仓集中度风险
	if analysis.Top10Percentage > 80 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: fmt.Sprintf("EXTREME CONCENTRATION - TOP 10 HOLD %.1f%%", analysis.Top10Percentage),
			Impact:  2,
		})
	} else if analysis.Top10Percentage > 60 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: fmt.Sprintf("HIGH CONCENTRATION - TOP 10 HOLD %.1f%%", analysis.Top10Percentage),
			Impact:  1,
		})
	}

	if analysis.DevWalletPercentage > 30 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: fmt.Sprintf("DEV HOLDS %.1f%% - HIGH DUMP RISK", analysis.DevWalletPercentage),
			Impact:  2,
		})
	}

	// 部署者风险
	rugRate := 0.0
	if history != nil && history.TokensDeployed > 0 {
		rugRate = float64(history.RuggedCount) / float64(history.TokensDeployed)
	}
	if rugRate > 0.7 {
		factors = append(factors, model.RiskFactor{
			Type: common.FACTOR_CRITICAL,
			Message: fmt.Sprintf("SERIAL RUGGER - DEPLOYER RUGGED %d/%d TOKENS",
				history.RuggedCount, history.TokensDeployed),
			Impact: 2,
		})
	} else if rugRate > 0.4 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: fmt.Sprintf("RISKY DEPLOYER - %.0f%% RUG RATE", math.Round(rugRate*100)),
			Impact:  1.5,
		})
	}

	// 持有者过少
	if analysis.TotalHolders < 10 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: fmt.Sprintf("VERY FEW HOLDERS - ONLY %d WALLETS", analysis.TotalHolders),
			Impact:  1,
		})
	}

	// 年龄风险
	if token.Age < 300 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: "EXTREMELY NEW - LESS THAN 5 MINUTES OLD",
			Impact:  1,
		})
	}

	// 未发现任何风险时补充合成结论
	if len(factors) == 0 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "NO MAJOR RED FLAGS DETECTED",
			Impact:  0,
		})
	}

	return factors
}
