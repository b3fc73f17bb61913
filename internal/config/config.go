package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/nameback/internal/history"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示未给出目标目录，或目录不存在/不是目录。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// FileName 是可选配置文件名。
	FileName = "nameback.yaml"

	DefaultWorkers = 1
	MaxWorkers     = 16
)

// CLIArgs 保留"是否显式指定"的信息，确保 --include-location=false 能覆盖配置文件中的 true。
type CLIArgs struct {
	Dir string

	DryRun bool

	SkipHidden    bool
	SkipHiddenSet bool

	IncludeLocation    bool
	IncludeLocationSet bool

	IncludeTimestamp    bool
	IncludeTimestampSet bool

	// FastVideo 只抽取 1 秒处的一帧。
	FastVideo    bool
	FastVideoSet bool

	NoGeocode    bool
	NoGeocodeSet bool

	NoCache    bool
	NoCacheSet bool

	Workers    int
	WorkersSet bool
}

// FileConfig 对应 nameback.yaml；未知字段报错。
type FileConfig struct {
	SkipHidden       *bool  `yaml:"skip_hidden"`
	IncludeLocation  *bool  `yaml:"include_location"`
	IncludeTimestamp *bool  `yaml:"include_timestamp"`
	MultiframeVideo  *bool  `yaml:"multiframe_video"`
	Geocode          *bool  `yaml:"geocode"`
	EnableCache      *bool  `yaml:"enable_cache"`
	CachePath        string `yaml:"cache_path"`
	HistoryPath      string `yaml:"history_path"`
	HistoryMax       int    `yaml:"history_max"`
	Workers          int    `yaml:"workers"`
}

// Options 是合并并规范化后的最终配置（实现层直接消费）。
type Options struct {
	Dir    string
	DryRun bool

	SkipHidden       bool
	IncludeLocation  bool
	IncludeTimestamp bool
	MultiframeVideo  bool
	Geocode          bool

	EnableCache bool
	CachePath   string

	HistoryPath string
	HistoryMax  int

	Workers int

	// ConfigFile 是实际读取的配置文件路径；未读取时为空。
	ConfigFile string
}

// Defaults 返回内置默认值（不含路径）。
func Defaults() Options {
	return Options{
		MultiframeVideo: true,
		Geocode:         true,
		EnableCache:     true,
		HistoryMax:      history.DefaultMax,
		Workers:         DefaultWorkers,
	}
}

// Fingerprint 汇总会影响命名结果的选项，作为缓存条目的 settings 字段。
func (o Options) Fingerprint() string {
	return fmt.Sprintf("loc=%t;ts=%t;geo=%t;mfv=%t", o.IncludeLocation, o.IncludeTimestamp, o.Geocode, o.MultiframeVideo)
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingPath:
		if e.Path == "" {
			return fmt.Sprintf("%s：未指定目标目录", e.Code)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：目标目录 %q 不可用：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：目标目录 %q 不可用", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（第一个存在的文件生效）：
// 1) <dir>/nameback.yaml
// 2) <UserConfigDir>/nameback/nameback.yaml
//
// 覆盖优先级：CLI 显式指定 > 配置文件 > 内置默认。
func LoadEffective(cwd string, cli CLIArgs) (Options, error) {
	if strings.TrimSpace(cli.Dir) == "" {
		return Options{}, &Error{Code: ErrCodeMissingPath}
	}
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return Options{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	dir := absCleanFrom(cwdAbs, cli.Dir)
	st, err := os.Stat(dir)
	if err != nil {
		return Options{}, &Error{Code: ErrCodeMissingPath, Path: dir, Err: err}
	}
	if !st.IsDir() {
		return Options{}, &Error{Code: ErrCodeMissingPath, Path: dir, Err: errors.New("不是目录")}
	}

	var (
		fc      FileConfig
		cfgPath string
	)
	for _, p := range candidateFiles(dir) {
		got, exists, err := readFileConfig(p)
		if err != nil {
			return Options{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if exists {
			fc, cfgPath = got, p
			break
		}
	}
	return merge(dir, cli, fc, cfgPath)
}

func candidateFiles(dir string) []string {
	out := []string{filepath.Join(dir, FileName)}
	if d, err := userConfigDir(); err == nil && d != "" {
		out = append(out, filepath.Join(d, "nameback", FileName))
	}
	return out
}

func merge(dir string, cli CLIArgs, fc FileConfig, cfgPath string) (Options, error) {
	o := Defaults()
	o.Dir = dir
	o.DryRun = cli.DryRun
	o.ConfigFile = cfgPath

	o.SkipHidden = pickBool(cli.SkipHiddenSet, cli.SkipHidden, fc.SkipHidden, o.SkipHidden)
	o.IncludeLocation = pickBool(cli.IncludeLocationSet, cli.IncludeLocation, fc.IncludeLocation, o.IncludeLocation)
	o.IncludeTimestamp = pickBool(cli.IncludeTimestampSet, cli.IncludeTimestamp, fc.IncludeTimestamp, o.IncludeTimestamp)
	o.MultiframeVideo = pickBool(cli.FastVideoSet, !cli.FastVideo, fc.MultiframeVideo, o.MultiframeVideo)
	o.Geocode = pickBool(cli.NoGeocodeSet, !cli.NoGeocode, fc.Geocode, o.Geocode)
	o.EnableCache = pickBool(cli.NoCacheSet, !cli.NoCache, fc.EnableCache, o.EnableCache)

	if fc.HistoryMax < 0 {
		return Options{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("history_max 不能为负数：%d", fc.HistoryMax)}
	}
	if fc.HistoryMax > 0 {
		o.HistoryMax = fc.HistoryMax
	}

	workers := fc.Workers
	if cli.WorkersSet {
		workers = cli.Workers
	}
	if workers == 0 {
		workers = DefaultWorkers
	}
	// 超出 [1, MaxWorkers] 截断。
	if workers < 1 {
		workers = 1
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	o.Workers = workers

	base := filepath.Dir(cfgPath)
	if p := strings.TrimSpace(fc.CachePath); p != "" {
		o.CachePath = absCleanFrom(base, expandHome(p))
	} else if p, err := DefaultCachePath(); err == nil {
		o.CachePath = p
	}
	if p := strings.TrimSpace(fc.HistoryPath); p != "" {
		o.HistoryPath = absCleanFrom(base, expandHome(p))
	} else if p, err := DefaultHistoryPath(); err == nil {
		o.HistoryPath = p
	}
	if o.EnableCache && o.CachePath == "" {
		return Options{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: errors.New("无法确定缓存路径，请设置 cache_path")}
	}
	return o, nil
}

func pickBool(cliSet, cliVal bool, file *bool, def bool) bool {
	if cliSet {
		return cliVal
	}
	if file != nil {
		return *file
	}
	return def
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
