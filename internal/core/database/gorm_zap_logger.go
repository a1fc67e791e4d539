package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormZapLogger 把 gorm 日志接到 zap：错误 / 慢查询 / info 级别全量 SQL
type gormZapLogger struct {
	l             *zap.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
	logParams     bool // false 时 SQL 只带占位符，不带参数值（邮箱、口令哈希等）
}

func newGormZapLogger(l *zap.Logger, level logger.LogLevel, slow time.Duration, logParams bool) *gormZapLogger {
	return &gormZapLogger{l: l.WithOptions(zap.AddCallerSkip(3)), level: level, slowThreshold: slow, logParams: logParams}
}

// ParamsFilter 实现 gorm.ParamsFilter；返回 nil 参数时 Trace 拿到的是占位符 SQL
func (g *gormZapLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if g.logParams {
		return sql, params
	}
	return sql, nil
}

func (g *gormZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormZapLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.l.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *gormZapLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.l.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormZapLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.l.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level == logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	fields := func() []zap.Field {
		sql, rows := fc()
		return []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql)}
	}
	switch {
	// 查不到记录属于业务分支，不算错误
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		g.l.Error("gorm query failed", append(fields(), zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= logger.Warn:
		g.l.Warn("gorm slow query", append(fields(), zap.Duration("threshold", g.slowThreshold))...)
	case g.level >= logger.Info:
		g.l.Info("gorm query", fields()...)
	}
}
