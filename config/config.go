package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func DefaultOptions() Options {
	basePath := os.Getenv("CONFIG_PATH")
	if basePath == "" {
		basePath = "config"
	}

	return Options{
		BasePath: basePath,
		FileName: "config",
		FileType: "yaml",
		Mode:     CurrentMode(),
	}
}

// Load 读取当前模式的配置文件，应用默认值和环境变量覆盖，并校验结果
func Load(optsArr ...Options) (*Settings, error) {
	opts := DefaultOptions()
	if len(optsArr) > 0 {
		opts = optsArr[0]
	}
	if opts.FileName == "" {
		opts.FileName = "config"
	}
	if opts.FileType == "" {
		opts.FileType = "yaml"
	}
	if opts.Mode == "" {
		opts.Mode = CurrentMode()
	}

	v, err := CreateConfig(opts)
	if err != nil {
		return nil, err
	}

	// 先设置默认值，Unmarshal 只覆盖存在的键
	settings := &Settings{}
	if err := defaults.Set(settings); err != nil {
		return nil, fmt.Errorf("❌ Failed to set defaults: %w", err)
	}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("❌ Failed to unmarshal config (path: %s, file: %s.%s): %w",
			opts.BasePath, opts.FileName, opts.FileType, err)
	}
	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate 校验结构体标签以及标签无法表达的跨字段规则
func Validate(s *Settings) error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("❌ Config validation failed: %w", err)
	}
	if len(s.Tags) == 0 {
		return fmt.Errorf("❌ Config validation failed: at least one tag must be configured")
	}
	if s.Storage.Backend == "s3" || s.Storage.Backend == "oss" {
		for name, tag := range s.Tags {
			if tag.Bucket == "" {
				return fmt.Errorf("❌ Config validation failed: tag %q has no bucket for the %s backend", name, s.Storage.Backend)
			}
		}
	}
	return nil
}

// CreateConfig 按顺序合并当前模式下存在的配置文件，并叠加环境变量
func CreateConfig(opts Options) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(opts.FileType)

	for _, configPath := range getConfigFilePaths(opts) {
		tempV := viper.New()
		tempV.SetConfigFile(configPath)
		if err := tempV.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("❌ Error reading config file %s: %w", configPath, err)
		}

		for _, key := range tempV.AllKeys() {
			v.Set(key, tempV.Get(key))
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()
	// AutomaticEnv 只对 viper 已知的键生效
	bindEnvs(v, reflect.TypeOf(Settings{}), "")

	applyEnvOverrides(v, opts.EnvPrefix)

	return v, nil
}

// bindEnvs 注册 t 的所有叶子键，配置文件未出现的键也能用环境变量设置
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		switch {
		case ft.Kind() == reflect.Struct && ft.String() != "time.Duration":
			bindEnvs(v, ft, key)
		case ft.Kind() == reflect.Map:
			// tags.<name>.bucket 只能来自配置文件
		default:
			_ = v.BindEnv(key)
		}
	}
}

// applyEnvOverrides 检查所有配置键，存在对应环境变量时覆盖
func applyEnvOverrides(v *viper.Viper, envPrefix string) {
	replacer := strings.NewReplacer(".", "_")

	for _, key := range v.AllKeys() {
		// server.addr -> SERVER_ADDR
		envKey := strings.ToUpper(replacer.Replace(key))
		if envPrefix != "" {
			envKey = strings.ToUpper(envPrefix) + "_" + envKey
		}

		if envValue := os.Getenv(envKey); envValue != "" {
			v.Set(key, envValue)
		}
	}
}

// getConfigFilePaths 列出 BasePath 下存在的 config.yaml、config.local.yaml、
// config.<mode>.yaml 和 config.<mode>.local.yaml（含模式简写），优先级从低到高
func getConfigFilePaths(opts Options) (configFiles []string) {
	fileNames := []string{
		opts.FileName,
		fmt.Sprintf("%s.local", opts.FileName),
	}
	for _, m := range append(opts.Mode.aliases(), string(opts.Mode)) {
		fileNames = append(fileNames,
			fmt.Sprintf("%s.%s", opts.FileName, m),
			fmt.Sprintf("%s.%s.local", opts.FileName, m),
		)
	}

	for _, fileName := range fileNames {
		file := filepath.Join(opts.BasePath, fmt.Sprintf("%s.%s", fileName, opts.FileType))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			configFiles = append(configFiles, file)
		}
	}
	return configFiles
}
