package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func stmt(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gl := NewGormLogger(nil, gormlogger.Warn)

	assert.Equal(t, gormlogger.Warn, gl.level)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.logNotFound)
	assert.False(t, gl.hideParams)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info)

	quiet, ok := gl.LogMode(gormlogger.Error).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, quiet.level)
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestGormLogger_MessagesRespectLevel(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	gl.Info(ctx, "migrated %d tables", 3)
	gl.Warn(ctx, "deprecated %s", "column")
	gl.Error(ctx, "failed %s", "insert")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "deprecated column", logs[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		begin   time.Time
		sql     string
		rows    int64
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{
			name:    "error",
			level:   gormlogger.Warn,
			sql:     "INSERT INTO stock_records",
			err:     errors.New("duplicate key"),
			wantMsg: "sql error",
			wantLvl: zapcore.ErrorLevel,
		},
		{
			name:  "record not found ignored",
			level: gormlogger.Info,
			sql:   "SELECT * FROM orders",
			err:   gormlogger.ErrRecordNotFound,
		},
		{
			name:    "record not found logged on request",
			level:   gormlogger.Info,
			opts:    []GormLoggerOption{WithIgnoreRecordNotFoundError(false)},
			sql:     "SELECT * FROM orders",
			err:     gormlogger.ErrRecordNotFound,
			wantMsg: "sql error",
			wantLvl: zapcore.ErrorLevel,
		},
		{
			name:    "slow",
			level:   gormlogger.Warn,
			opts:    []GormLoggerOption{WithSlowThreshold(10 * time.Millisecond)},
			begin:   time.Now().Add(-time.Second),
			sql:     "SELECT SUM(quantity) FROM stock_records",
			rows:    1,
			wantMsg: "slow sql",
			wantLvl: zapcore.WarnLevel,
		},
		{
			name:    "lost version check",
			level:   gormlogger.Warn,
			sql:     "UPDATE reservations SET box_count=3,version=4 WHERE id = 'x' AND version = 3",
			wantMsg: "version check matched no row",
			wantLvl: zapcore.DebugLevel,
		},
		{
			name:    "plain statement at info",
			level:   gormlogger.Info,
			sql:     "SELECT * FROM items",
			rows:    2,
			wantMsg: "sql",
			wantLvl: zapcore.DebugLevel,
		},
		{
			name:  "plain statement below info",
			level: gormlogger.Warn,
			sql:   "SELECT * FROM items",
			rows:  2,
		},
		{
			name:  "silent",
			level: gormlogger.Silent,
			sql:   "INSERT INTO orders",
			err:   errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl, recorded := newObservedGorm(tt.level, tt.opts...)
			begin := tt.begin
			if begin.IsZero() {
				begin = time.Now()
			}

			gl.Trace(context.Background(), begin, stmt(tt.sql, tt.rows), tt.err)

			logs := recorded.All()
			if tt.wantMsg == "" {
				assert.Empty(t, logs)
				return
			}
			require.Len(t, logs, 1)
			assert.Equal(t, tt.wantMsg, logs[0].Message)
			assert.Equal(t, tt.wantLvl, logs[0].Level)
			assert.Equal(t, tt.sql, logs[0].ContextMap()["sql"])
		})
	}
}

func TestGormLogger_TraceCarriesCorrelation(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Info)
	ctx := WithActor(WithRequestID(context.Background(), "req-42"), "op-7")

	gl.Trace(ctx, time.Now(), stmt("SELECT 1", 1), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "op-7", fields["actor"])
	assert.Equal(t, int64(1), fields["rows"])
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	ctx := context.Background()

	shown := NewGormLogger(nil, gormlogger.Info)
	sql, params := shown.ParamsFilter(ctx, "SELECT * FROM orders WHERE order_number = ?", int64(21001))
	assert.Equal(t, "SELECT * FROM orders WHERE order_number = ?", sql)
	assert.Equal(t, []any{int64(21001)}, params)

	hidden := NewGormLogger(nil, gormlogger.Info, WithParameterizedQueries(true))
	_, params = hidden.ParamsFilter(ctx, "SELECT * FROM orders WHERE order_number = ?", int64(21001))
	assert.Nil(t, params)
}

func TestIsVersionedUpdate(t *testing.T) {
	assert.True(t, isVersionedUpdate("  UPDATE orders SET status='docas' WHERE id = 1 AND version = 2"))
	assert.False(t, isVersionedUpdate("UPDATE locations SET name='x'"))
	assert.False(t, isVersionedUpdate("SELECT version FROM schema_migrations"))
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"ERROR":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"verbose": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}
