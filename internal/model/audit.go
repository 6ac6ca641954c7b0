package model

import (
	"fmt"
	"strings"
	"time"

	"claw_audit/internal/common"
)

// HolderRecord 表示单个持有者
type HolderRecord struct {
	Address    string  `json:"address"`    // 持有者地址
	Amount     float64 `json:"amount"`     // 持仓数量(已按精度折算)
	Percentage float64 `json:"percentage"` // 占总供应量百分比
	IsDeployer bool    `json:"isDeployer"` // 是否为部署者钱包
}

// HolderAnalysis 持仓分布分析结果
// 全零结果表示"数据不可用"，不代表分布良好
type HolderAnalysis struct {
	TotalHolders        int            `json:"totalHolders"`        // 持有者总数
	Top10Percentage     float64        `json:"top10Percentage"`     // 前10持仓占比之和
	DevWalletPercentage float64        `json:"devWalletPercentage"` // 开发者钱包占比
	SniperCount         int            `json:"sniperCount"`         // 狙击钱包数量
	TopHolders          []HolderRecord `json:"topHolders"`          // 前10持有者
}

// AuthorityFlags 铸币/冻结权限标志
type AuthorityFlags struct {
	HasMintAuthority   bool    `json:"hasMintAuthority"`   // 是否保留铸币权限
	HasFreezeAuthority bool    `json:"hasFreezeAuthority"` // 是否保留冻结权限
	MintAuthority      string  `json:"mintAuthority"`      // 铸币权限地址，可为空
	FreezeAuthority    string  `json:"freezeAuthority"`    // 冻结权限地址，可为空
	Supply             float64 `json:"supply"`             // mint账户记录的供应量
	Decimals           uint8   `json:"decimals"`           // 精度
}

// DeployerHistory 部署者历史记录
type DeployerHistory struct {
	TokensDeployed int     `json:"tokensDeployed"` // 估算的部署代币数量
	RuggedCount    int     `json:"ruggedCount"`    // 估算的跑路代币数量
	AvgTokenLife   float64 `json:"avgTokenLife"`   // 平均代币存活时间(分钟)
	Verdict        string  `json:"verdict"`        // 定性结论
	RugRate        float64 `json:"rugRate"`        // 跑路率(百分比)
}

// RiskFactor 单条风险因子说明
type RiskFactor struct {
	Type    common.FactorType `json:"type"`    // critical/warning/success
	Message string            `json:"message"` // 可读说明
	Impact  float64           `json:"impact"`  // 对原始分数的加分贡献(0-2)
}

// AuditReport 审计报告，创建后不再修改
type AuditReport struct {
	Token           *TokenSnapshot   `json:"token"`
	HolderAnalysis  *HolderAnalysis  `json:"holderAnalysis"`
	RiskFactors     []RiskFactor     `json:"riskFactors"`
	RiskScore       float64          `json:"riskScore"` // 1-10
	DeployerHistory *DeployerHistory `json:"deployerHistory"`
	Authorities     *AuthorityFlags  `json:"authorities,omitempty"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	IsRealData      bool             `json:"isRealData"` // 区分真实数据与降级/模拟数据
}

// ShortenAddress 截断地址用于显示
func ShortenAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}

// FormatAuditReport 格式化显示审计报告
func FormatAuditReport(report *AuditReport, bar string, verdict string, level common.RiskLevel) string {
	var sb strings.Builder

	source := "LIVE CHAIN DATA"
	if !report.IsRealData {
		source = "DEGRADED / SYNTHETIC DATA"
	}

	sb.WriteString("\n\t==== 代币审计报告 ====\n")
	sb.WriteString(fmt.Sprintf("\ttoken: %s (%s)\n", report.Token.Name, report.Token.Ticker))
	sb.WriteString(fmt.Sprintf("\taddress: %s\n", report.Token.Address))
	sb.WriteString(fmt.Sprintf("\tage: %s  mcap: %s\n", FormatAge(report.Token.Age), FormatMcap(report.Token.Mcap)))
	sb.WriteString(fmt.Sprintf("\trisk: %.1f/10 [%s] %s\n", report.RiskScore, level, bar))
	sb.WriteString(fmt.Sprintf("\tverdict: %s\n", verdict))
	sb.WriteString(fmt.Sprintf("\tdata source: %s\n", source))

	sb.WriteString("\t---- 风险因子 ----\n")
	for _, f := range report.RiskFactors {
		prefix := "[+]"
		switch f.Type {
		case common.FACTOR_CRITICAL:
			prefix = "[!]"
		case common.FACTOR_WARNING:
			prefix = "[~]"
		}
		sb.WriteString(fmt.Sprintf("\t%s %s (+%.1f)\n", prefix, f.Message, f.Impact))
	}

	if report.DeployerHistory != nil {
		d := report.DeployerHistory
		sb.WriteString("\t---- 部署者历史 ----\n")
		sb.WriteString(fmt.Sprintf("\tdeployed: %d  rugged: %d  rug rate: %.0f%%\n",
			d.TokensDeployed, d.RuggedCount, d.RugRate))
		sb.WriteString(fmt.Sprintf("\tverdict: %s\n", d.Verdict))
	}

	if report.HolderAnalysis != nil && len(report.HolderAnalysis.TopHolders) > 0 {
		sb.WriteString("\t---- 头部持仓 ----\n")
		for i, h := range report.HolderAnalysis.TopHolders {
			tag := ""
			if h.IsDeployer {
				tag = " (DEV)"
			}
			sb.WriteString(fmt.Sprintf("\t#%-2d %s  %.2f%%%s\n", i+1, ShortenAddress(h.Address), h.Percentage, tag))
		}
	}

	sb.WriteString(fmt.Sprintf("\tgenerated at: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("\t====================\n")
	return sb.String()
}
