package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New инициализирует логгер. Уровень приходит из конфигурации (LOG_LEVEL);
// пустое или нераспознанное значение трактуется как info.
func New(output io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))

	parsed, parseErr := logrus.ParseLevel(level)
	if parseErr != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	// окружения отличные от продакшн получают человекочитаемый вывод
	if os.Getenv("GIN_MODE") != "release" {
		l.SetFormatter(new(logrus.TextFormatter))
	}

	return l
}
