package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"meghamaster/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileHook 自定义Hook，将日志写入滚动文件
type FileHook struct {
	logConfig *config.LogConfig
	writer    io.Writer
	formatter logrus.Formatter
	mutex     sync.Mutex
}

// NewFileHook 创建一个新的FileHook实例
func NewFileHook(logConfig *config.LogConfig) *FileHook {
	hook := &FileHook{
		logConfig: logConfig,
		formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		},
	}

	hook.initWriter()

	return hook
}

// initWriter 初始化滚动日志writer
func (hook *FileHook) initWriter() {
	if hook.logConfig.FilePath == "" {
		return
	}
	// 确保日志目录存在
	_ = os.MkdirAll(filepath.Dir(hook.logConfig.FilePath), 0755)
	hook.writer = &lumberjack.Logger{
		Filename:   hook.logConfig.FilePath,
		MaxSize:    hook.logConfig.MaxSize,
		MaxBackups: hook.logConfig.MaxBackups,
		MaxAge:     hook.logConfig.MaxAge,
		Compress:   hook.logConfig.Compress,
	}
}

// Levels 返回Hook处理的日志级别
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 将日志条目写入文件
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	if hook.writer == nil {
		return nil
	}

	data, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	_, err = hook.writer.Write(data)
	return err
}
