package config

import (
	"os"
	"strings"
)

// ModeEnvKey 运行模式环境变量，决定加载哪些覆盖配置文件
const ModeEnvKey = "GO_ENV_MODE"

type Mode string

const (
	DevMode  Mode = "development"
	ProMode  Mode = "production"
	TestMode Mode = "test"
)

// ParseMode 解析运行模式，未知值视为开发模式
func ParseMode(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// CurrentMode 读取 GO_ENV_MODE
func CurrentMode() Mode {
	return ParseMode(os.Getenv(ModeEnvKey))
}

// aliases 模式对应的简写文件后缀
func (m Mode) aliases() []string {
	switch m {
	case ProMode:
		return []string{"pro", "prod"}
	case DevMode:
		return []string{"dev"}
	default:
		return nil
	}
}
