package cli

import (
	"io"
	"os"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

// spinnerHook hands every entry to a child logger writing to the parent's
// output (a colorable stderr on terminals), with the spinner paused so the
// line is not garbled by it.
type spinnerHook struct {
	logger  *logrus.Logger
	spinner *spinner.Spinner
}

func newLogFormatter(isTerminal, noColor bool) logrus.Formatter {
	if !isTerminal {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		ForceColors:      !noColor,
		DisableColors:    noColor,
		DisableTimestamp: true,
	}
}

func newSpinnerHandlerHook(parent *logrus.Logger, s *spinner.Spinner, isTerminal, noColor bool) *spinnerHook {
	logger := logrus.New()
	logger.Out = parent.Out
	if parent.Out != io.Discard {
		logger.Formatter = newLogFormatter(isTerminal, noColor)
		if isTerminal && parent.Out == os.Stderr {
			logger.Out = colorable.NewColorableStderr()
		}
		logger.Level = parent.GetLevel()
	}
	return &spinnerHook{
		logger:  logger,
		spinner: s,
	}
}

func (hook *spinnerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *spinnerHook) Fire(entry *logrus.Entry) error {
	if hook.spinner != nil && hook.spinner.Active() {
		hook.spinner.Stop()
		defer hook.spinner.Start()
	}
	entry.Logger = hook.logger
	return nil
}
