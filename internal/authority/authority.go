package authority

import (
	"claw_audit/internal/common"
	"claw_audit/internal/model"
)

// Risk 计算权限风险贡献，铸币+40，冻结+30，范围0-70
func Risk(flags *model.AuthorityFlags) int {
	if flags == nil {
		return 0
	}

	risk := 0
	if flags.HasMintAuthority {
		risk += common.MINT_AUTHORITY_RISK
	}
	if flags.HasFreezeAuthority {
		risk += common.FREEZE_AUTHORITY_RISK
	}
	return risk
}

// WarningLevel 权限告警等级：双权限critical，单权限warning，无权限success
func WarningLevel(flags *model.AuthorityFlags) common.FactorType {
	if flags == nil {
		return common.FACTOR_SUCCESS
	}
	if flags.HasMintAuthority && flags.HasFreezeAuthority {
		return common.FACTOR_CRITICAL
	}
	if flags.HasMintAuthority || flags.HasFreezeAuthority {
		return common.FACTOR_WARNING
	}
	return common.FACTOR_SUCCESS
}

// Warning 权限告警文案
func Warning(flags *model.AuthorityFlags) string {
	switch WarningLevel(flags) {
	case common.FACTOR_CRITICAL:
		return "CRITICAL: BOTH MINT AND FREEZE AUTHORITIES ENABLED"
	case common.FACTOR_WARNING:
		if flags.HasMintAuthority {
			return "WARNING: MINT AUTHORITY CAN CREATE UNLIMITED TOKENS"
		}
		return "WARNING: FREEZE AUTHORITY CAN LOCK YOUR TOKENS"
	default:
		return "SAFE: NO DANGEROUS AUTHORITIES DETECTED"
	}
}
