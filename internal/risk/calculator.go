package risk

import (
	"fmt"
	"math"
	"strings"

	"claw_audit/internal/common"
	"claw_audit/internal/model"
)

// CalculateRiskScore 粗粒度加法路径：按固定顺序评估8个因子，
// 原始分数保留一位小数后夹在[1,10]，最低展示风险为1
func CalculateRiskScore(
	token *model.TokenSnapshot,
	analysis *model.HolderAnalysis,
	hasMintAuthority bool,
	hasFreezeAuthority bool,
	deployerRugRate float64,
) (float64, []model.RiskFactor) {
	score := 0.0
	factors := []model.RiskFactor{}

	// 因子1: 前10持仓集中度 (0-2分)
	if analysis.Top10Percentage > 80 {
		score += 2
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: "TOP 10 WALLETS HOLD >80% OF SUPPLY",
			Impact:  2,
		})
	} else if analysis.Top10Percentage > 60 {
		score += 1.5
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: "TOP 10 WALLETS HOLD >60% OF SUPPLY",
			Impact:  1.5,
		})
	} else if analysis.Top10Percentage < 40 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "WELL-DISTRIBUTED HOLDER BASE",
			Impact:  0,
		})
	}

	// 因子2: 开发者钱包占比 (0-2分)
	if analysis.DevWalletPercentage > 20 {
		score += 2
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: fmt.Sprintf("DEV HOLDS %.1f%% OF SUPPLY", analysis.DevWalletPercentage),
			Impact:  2,
		})
	} else if analysis.DevWalletPercentage > 10 {
		score += 1
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: fmt.Sprintf("DEV HOLDS %.1f%% OF SUPPLY", analysis.DevWalletPercentage),
			Impact:  1,
		})
	} else {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "DEV WALLET HOLDS <10% OF SUPPLY",
			Impact:  0,
		})
	}

	// 因子3: 代币年龄 (0-1.5分)
	if token.Age < 300 {
		score += 1.5
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: "TOKEN AGE < 5 MINUTES - VERY FRESH",
			Impact:  1.5,
		})
	} else if token.Age < 1800 {
		score += 0.5
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: "TOKEN AGE < 30 MINUTES",
			Impact:  0.5,
		})
	}

	// 因子4: 铸币权限 (0-2分)
	if hasMintAuthority {
		score += 2
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: "MINT AUTHORITY PRESENT - CAN INFLATE SUPPLY",
			Impact:  2,
		})
	} else {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "NO MINT AUTHORITY",
			Impact:  0,
		})
	}

	// 因子5: 冻结权限 (0-1.5分)
	if hasFreezeAuthority {
		score += 1.5
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: "FREEZE AUTHORITY PRESENT - CAN FREEZE WALLETS",
			Impact:  1.5,
		})
	} else {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "NO FREEZE AUTHORITY",
			Impact:  0,
		})
	}

	// 因子6: 部署者跑路率 (0-2分)
	if deployerRugRate > 80 {
		score += 2
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_CRITICAL,
			Message: fmt.Sprintf("DEPLOYER HAS %.0f%% RUG RATE", deployerRugRate),
			Impact:  2,
		})
	} else if deployerRugRate > 50 {
		score += 1.5
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: fmt.Sprintf("DEPLOYER HAS %.0f%% RUG RATE", deployerRugRate),
			Impact:  1.5,
		})
	} else if deployerRugRate < 20 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "DEPLOYER HAS GOOD TRACK RECORD",
			Impact:  0,
		})
	}

	// 因子7: 流动性比率 (0-1分)
	if token.LiquidityRatio() < 0.1 {
		score += 1
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: "LOW LIQUIDITY RATIO - EXIT MAY BE DIFFICULT",
			Impact:  1,
		})
	}

	// 因子8: 狙击钱包 (0-0.5分)
	if analysis.SniperCount > 5 {
		score += 0.5
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_WARNING,
			Message: fmt.Sprintf("%d SNIPER WALLETS DETECTED", analysis.SniperCount),
			Impact:  0.5,
		})
	}

	// 一个因子都没有时补充一条合成结论，报告绝不为空
	if len(factors) == 0 {
		factors = append(factors, model.RiskFactor{
			Type:    common.FACTOR_SUCCESS,
			Message: "NO MAJOR RED FLAGS DETECTED",
			Impact:  0,
		})
	}

	// 保留一位小数，分数下限为1，永不展示零风险
	score = math.Min(10, math.Max(1, math.Round(score*10)/10))

	return score, factors
}

// GetRiskVerdict 根据分数生成结论文案
func GetRiskVerdict(score float64) string {
	if score <= 2 {
		return "LOW RISK - RELATIVELY SAFE"
	}
	if score <= 4 {
		return "MODERATE RISK - PROCEED WITH CAUTION"
	}
	if score <= 6 {
		return "ELEVATED RISK - SIGNIFICANT CONCERNS"
	}
	if score <= 8 {
		return "HIGH RISK - NOT RECOMMENDED"
	}
	return "CRITICAL RISK - LIKELY RUG/SCAM"
}

// GetRiskLevel 风险等级：<=3 LOW，<=6 MEDIUM，否则HIGH
func GetRiskLevel(score float64) common.RiskLevel {
	if score <= 3 {
		return common.RISK_LOW
	}
	if score <= 6 {
		return common.RISK_MEDIUM
	}
	return common.RISK_HIGH
}

// RiskBar 文本风险条，固定15个字符宽度
func RiskBar(score float64) string {
	bars := int(math.Round(score / 10 * common.RISK_BAR_WIDTH))
	if bars < 0 {
		bars = 0
	}
	if bars > common.RISK_BAR_WIDTH {
		bars = common.RISK_BAR_WIDTH
	}
	return strings.Repeat("█", bars) + strings.Repeat("░", common.RISK_BAR_WIDTH-bars)
}
