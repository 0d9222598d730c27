package logging

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const TimestampFormat = "2006-01-02 15:04:05,000"

// New builds the process logger. It is created once in main and handed
// to everything else explicitly.
func New(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetReportCaller(true)
	l.SetFormatter(&LineFormatter{})
	return l
}

// LineFormatter writes "<timestamp> - <LEVEL> - <module>.<function> - <message>".
type LineFormatter struct{}

func (f *LineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(e.Time.Format(TimestampFormat))
	b.WriteString(" - ")
	b.WriteString(strings.ToUpper(e.Level.String()))
	b.WriteString(" - ")
	b.WriteString(caller(e))
	b.WriteString(" - ")
	b.WriteString(e.Message)

	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// caller trims "github.com/x/y/internal/pkg.(*T).Method" to "pkg.(*T).Method".
func caller(e *logrus.Entry) string {
	if !e.HasCaller() {
		return "unknown.unknown"
	}
	return path.Base(e.Caller.Function)
}
