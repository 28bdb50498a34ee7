package logging

import (
	"io"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileAppender returns an appender writing JSON encoded entries to filename, rotated once it grows past 100
// megabytes. The returned closer releases the file.
func NewFileAppender(filename string) (Appender, io.Closer) {
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 2,
		Compress:   true,
	}
	cfg := NewLoggerConfig().EncoderConfig
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(writer), zapcore.DebugLevel), writer
}
