package common

// RiskLevel 风险等级
type RiskLevel string

// FactorType 风险因子类型
type FactorType string

const (
	RISK_LOW    RiskLevel = "LOW"
	RISK_MEDIUM RiskLevel = "MEDIUM"
	RISK_HIGH   RiskLevel = "HIGH"
)

const (
	FACTOR_CRITICAL FactorType = "critical"
	FACTOR_WARNING  FactorType = "warning"
	FACTOR_SUCCESS  FactorType = "success"
)

// 持仓分析相关常量
const TOP_HOLDER_COUNT = 10    // 头部持仓统计数量
const SNIPER_MIN_RANK = 3      // 狙击钱包最小下标(0起始，即第4名及之后)
const SNIPER_MIN_PERCENT = 1.0 // 狙击钱包最低个人持仓百分比
const RISK_BAR_WIDTH = 15      // 风险条字符宽度

// 外部数据相关常量
const MAX_SIGNATURE_FETCH = 100 // 部署者交易签名查询上限
const MAX_CONCURRENT_AUDITS = 2 // 审计工作线程上限

// 权限风险分值
const MINT_AUTHORITY_RISK = 40   // 存在铸币权限的风险贡献
const FREEZE_AUTHORITY_RISK = 30 // 存在冻结权限的风险贡献
