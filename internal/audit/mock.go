package audit

import (
	"math/rand"
	"sync"
	"time"

	"claw_audit/internal/model"
	"claw_audit/internal/risk"
)

// 合成数据的权限概率：15%保留铸币权限，10%保留冻结权限
const (
	MOCK_MINT_AUTHORITY_PROB   = 0.15
	MOCK_FREEZE_AUTHORITY_PROB = 0.10
)

const addressChars = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz123456789"

// 模拟部署者历史按地址缓存，同一部署者多次降级审计时结论一致
var (
	mockDeployerMu    sync.Mutex
	mockDeployerCache = make(map[string]model.DeployerHistory)
)

// GenerateMockAudit 生成完全合成的审计报告。
// 合成输入走与真实数据相同的评分路径，评分逻辑不重复实现。
func GenerateMockAudit(token *model.TokenSnapshot) *model.AuditReport {
	analysis := generateMockHolderAnalysis(token)
	history := mockDeployerHistory(token.Deployer)

	flags := &model.AuthorityFlags{
		HasMintAuthority:   rand.Float64() < MOCK_MINT_AUTHORITY_PROB,
		HasFreezeAuthority: rand.Float64() < MOCK_FREEZE_AUTHORITY_PROB,
		Supply:             token.Supply,
		Decimals:           9,
	}

	score, factors := risk.CalculateRiskScore(
		token,
		analysis,
		flags.HasMintAuthority,
		flags.HasFreezeAuthority,
		history.RugRate,
	)

	return &model.AuditReport{
		Token:           token,
		HolderAnalysis:  analysis,
		RiskFactors:     factors,
		RiskScore:       score,
		DeployerHistory: &history,
		Authorities:     flags,
		GeneratedAt:     time.Now(),
		IsRealData:      false,
	}
}

// generateMockHolderAnalysis 生成内部一致的持仓分析：
// 前10持仓占比之和严格等于top10Percentage，开发者钱包为第一条
func generateMockHolderAnalysis(token *model.TokenSnapshot) *model.HolderAnalysis {
	top10Percentage := 40 + rand.Float64()*50 // 40-90%
	devWalletPercentage := 5 + rand.Float64()*20
	if devWalletPercentage > top10Percentage-9 {
		devWalletPercentage = top10Percentage - 9
	}
	sniperCount := rand.Intn(8)

	topHolders := make([]model.HolderRecord, 0, 10)
	remaining := top10Percentage - devWalletPercentage

	for i := 0; i < 10; i++ {
		isDeployer := i == 0

		var percentage float64
		switch {
		case isDeployer:
			percentage = devWalletPercentage
		case i == 9:
			percentage = remaining
		default:
			percentage = remaining * (0.1 + rand.Float64()*0.15)
			remaining -= percentage
		}

		address := token.Deployer
		if !isDeployer || address == "" {
			address = randomAddress()
		}

		topHolders = append(topHolders, model.HolderRecord{
			Address:    address,
			Amount:     percentage / 100 * token.Supply,
			Percentage: percentage,
			IsDeployer: isDeployer,
		})
	}

	totalHolders := token.Holders
	if totalHolders <= 0 {
		totalHolders = 50 + rand.Intn(450)
	}

	return &model.HolderAnalysis{
		TotalHolders:        totalHolders,
		Top10Percentage:     top10Percentage,
		DevWalletPercentage: devWalletPercentage,
		SniperCount:         sniperCount,
		TopHolders:          topHolders,
	}
}

// mockDeployerHistory 生成或复用模拟部署者历史
func mockDeployerHistory(address string) model.DeployerHistory {
	mockDeployerMu.Lock()
	defer mockDeployerMu.Unlock()

	if h, ok := mockDeployerCache[address]; ok {
		return h
	}

	h := generateMockDeployerHistory()
	mockDeployerCache[address] = h
	return h
}

// generateMockDeployerHistory 按三档分布生成部署者画像
func generateMockDeployerHistory() model.DeployerHistory {
	deployerType := rand.Float64()

	if deployerType < 0.2 {
		// 良性部署者 (20%)
		return model.DeployerHistory{
			TokensDeployed: rand.Intn(10) + 5,
			RuggedCount:    rand.Intn(2),
			AvgTokenLife:   float64(rand.Intn(2000) + 500),
			Verdict:        "LEGITIMATE DEVELOPER - GOOD TRACK RECORD",
			RugRate:        rand.Float64() * 20,
		}
	}

	if deployerType < 0.5 {
		// 混合记录 (30%)
		deployed := rand.Intn(15) + 5
		rugged := int(float64(deployed) * (0.3 + rand.Float64()*0.3))
		return model.DeployerHistory{
			TokensDeployed: deployed,
			RuggedCount:    rugged,
			AvgTokenLife:   float64(rand.Intn(500) + 100),
			Verdict:        "MIXED RECORD - SOME RUGS DETECTED",
			RugRate:        float64(rugged) / float64(deployed) * 100,
		}
	}

	// 惯犯 (50%)
	deployed := rand.Intn(25) + 8
	rugged := int(float64(deployed) * (0.6 + rand.Float64()*0.35))
	return model.DeployerHistory{
		TokensDeployed: deployed,
		RuggedCount:    rugged,
		AvgTokenLife:   float64(rand.Intn(100) + 20),
		Verdict:        "SERIAL DEPLOYER - CAUTION",
		RugRate:        float64(rugged) / float64(deployed) * 100,
	}
}

// randomAddress 生成随机的类Solana地址
func randomAddress() string {
	b := make([]byte, 44)
	for i := range b {
		b[i] = addressChars[rand.Intn(len(addressChars))]
	}
	return string(b)
}
