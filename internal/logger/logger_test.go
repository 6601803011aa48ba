package logger

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLevel(t *testing.T) {
	cases := []struct {
		name      string
		level     string
		wantLevel logrus.Level
	}{
		{name: "explicit level", level: "warn", wantLevel: logrus.WarnLevel},
		{name: "debug level", level: "debug", wantLevel: logrus.DebugLevel},
		{name: "empty falls back to info", level: "", wantLevel: logrus.InfoLevel},
		{name: "garbage falls back to info", level: "loud", wantLevel: logrus.InfoLevel},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := New(io.Discard, c.level)

			assert.Equal(t, c.wantLevel, l.GetLevel())
		})
	}
}
