package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"nextgen-training/internal/core/config"
)

type Options struct {
	Level     string         // debug / info / warn / error，非法值按 info
	JSON      bool           // false 时用彩色控制台格式
	AddCaller bool
	Rotate    config.LogFile // 文件切割（Enable=false 时不写文件）
	Out       io.Writer      // 默认 os.Stdout
	Fields    []zap.Field    // 每条日志都带的字段，如 service/env
}

// New 只写 stdout
func New(level string, json bool) (*zap.Logger, func()) {
	return Build(Options{Level: level, JSON: json, AddCaller: true})
}

// FromConfig 按 log 段构建，并带上 service/env 字段
func FromConfig(c config.Log, app config.App) (*zap.Logger, func()) {
	return Build(Options{
		Level:     c.Level,
		JSON:      c.JSON,
		AddCaller: true,
		Rotate:    c.File,
		Fields:    []zap.Field{zap.String("service", app.Name), zap.String("env", app.Env)},
	})
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func rotator(f config.LogFile) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   f.Filename,
		MaxSize:    max(1, f.MaxSizeMB), // MB
		MaxBackups: max(0, f.MaxBackups),
		MaxAge:     max(0, f.MaxAgeDays), // 天
		Compress:   f.Compress,
	}
}

// Build stdout 与（可选）文件两路 tee，外层采样防日志风暴
func Build(opt Options) (*zap.Logger, func()) {
	lvl, err := zapcore.ParseLevel(opt.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	out := opt.Out
	if out == nil {
		out = os.Stdout
	}

	enc := encoder(opt.JSON)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(out), lvl)}
	var file *lumberjack.Logger
	if opt.Rotate.Enable {
		file = rotator(opt.Rotate)
		// 文件里统一用 JSON，方便采集
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(file), lvl))
	}
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	zopts := []zap.Option{zap.Fields(opt.Fields...)}
	if opt.AddCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	if !opt.JSON {
		zopts = append(zopts, zap.Development())
	}
	l := zap.New(core, zopts...)
	return l, func() {
		_ = l.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
}

// RedirectStdLog 标准库 log 输出转到 zap
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
