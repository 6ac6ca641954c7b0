package holders

import (
	"math"
	"sort"

	"claw_audit/internal/common"
	"claw_audit/internal/model"
)

// Account 外部采集方提供的代币账户记录
type Account struct {
	Address   string // 账户地址
	RawAmount uint64 // 原始持仓数量(未折算精度)
	Decimals  uint8  // 精度
}

// Analyze 将持有者账户列表归并为分布分析结果
// 列表为空或供应量无效时返回全零分析，调用方须将其视为"数据不可用"
func Analyze(accounts []Account, supply float64, deployerAddress string) *model.HolderAnalysis {
	if len(accounts) == 0 || supply <= 0 {
		return DefaultAnalysis()
	}

	records := make([]model.HolderRecord, 0, len(accounts))
	for _, acc := range accounts {
		amount := float64(acc.RawAmount) / math.Pow(10, float64(acc.Decimals))
		records = append(records, model.HolderRecord{
			Address:    acc.Address,
			Amount:     amount,
			Percentage: amount / supply * 100,
			IsDeployer: deployerAddress != "" && acc.Address == deployerAddress,
		})
	}

	// 按占比降序稳定排序，并列时保持采集方原始顺序
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Percentage > records[j].Percentage
	})

	topCount := common.TOP_HOLDER_COUNT
	if len(records) < topCount {
		topCount = len(records)
	}

	top10Percentage := 0.0
	for _, r := range records[:topCount] {
		top10Percentage += r.Percentage
	}

	// 开发者钱包占比：优先匹配部署者地址，匹配不到时取第一大持仓
	devWalletPercentage := records[0].Percentage
	if deployerAddress != "" {
		devWalletPercentage = 0
		for _, r := range records {
			if r.Address == deployerAddress {
				devWalletPercentage = r.Percentage
				break
			}
		}
	}

	// 狙击钱包：排名第4及之后、个人持仓超过1%的账户
	sniperCount := 0
	for i, r := range records {
		if i >= common.SNIPER_MIN_RANK && r.Percentage > common.SNIPER_MIN_PERCENT {
			sniperCount++
		}
	}

	return &model.HolderAnalysis{
		TotalHolders:        len(records),
		Top10Percentage:     top10Percentage,
		DevWalletPercentage: devWalletPercentage,
		SniperCount:         sniperCount,
		TopHolders:          records[:topCount],
	}
}

// DefaultAnalysis 数据不可用时的全零分析
func DefaultAnalysis() *model.HolderAnalysis {
	return &model.HolderAnalysis{
		TotalHolders:        0,
		Top10Percentage:     0,
		DevWalletPercentage: 0,
		SniperCount:         0,
		TopHolders:          []model.HolderRecord{},
	}
}

// IsSuspicious 判断持仓分布是否存在明显红旗
func IsSuspicious(analysis *model.HolderAnalysis) bool {
	if analysis.Top10Percentage > 80 {
		return true
	}
	if analysis.DevWalletPercentage > 20 {
		return true
	}
	if analysis.TotalHolders > 0 && analysis.TotalHolders < 10 {
		return true
	}
	if analysis.SniperCount > 5 {
		return true
	}
	return false
}

// ConcentrationLevel 头部持仓集中度等级
func ConcentrationLevel(top10Percentage float64) string {
	if top10Percentage > 90 {
		return "CRITICAL"
	}
	if top10Percentage > 75 {
		return "HIGH"
	}
	if top10Percentage > 60 {
		return "MEDIUM"
	}
	return "LOW"
}
