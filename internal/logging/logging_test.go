package logging

import (
	"bytes"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - [A-Z]+ - [^ ]+ - .*$`)

func TestNew_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Error("boom")

	line := strings.TrimRight(buf.String(), "\n")
	require.Regexp(t, lineRe, line)
	require.Contains(t, line, " - ERROR - logging.TestNew_LineFormat - boom")
}

func TestNew_MinLevelInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Debug("hidden")
	require.Empty(t, buf.String())

	log.Info("shown")
	log.Warn("careful")
	out := buf.String()
	require.Contains(t, out, " - INFO - ")
	require.Contains(t, out, " - WARNING - ")
	require.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLineFormatter_Format(t *testing.T) {
	f := &LineFormatter{}
	e := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 3, 1, 12, 30, 45, 123_000_000, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "store is slow",
		Data:    logrus.Fields{"scheme": "postgresql", "attempt": 1},
		Caller:  &runtime.Frame{Function: "github.com/BearBump/mlflow-server/internal/storage/backendstore.(*Initializer).initPostgres"},
	}
	e.Logger.SetReportCaller(true)

	b, err := f.Format(e)
	require.NoError(t, err)
	require.Equal(t,
		"2025-03-01 12:30:45,123 - WARNING - backendstore.(*Initializer).initPostgres - store is slow attempt=1 scheme=postgresql\n",
		string(b))
}

func TestLineFormatter_NoCaller(t *testing.T) {
	f := &LineFormatter{}
	e := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hi",
	}

	b, err := f.Format(e)
	require.NoError(t, err)
	require.Equal(t, "2025-03-01 00:00:00,000 - INFO - unknown.unknown - hi\n", string(b))
}
