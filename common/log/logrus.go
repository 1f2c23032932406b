package log

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var registerHook sync.Once

// NewLogger returns an entry of the standard logger whose messages are
// prefixed with "[tag]: ".
func NewLogger(tag string) *logrus.Entry {
	registerHook.Do(func() {
		logrus.AddHook(new(TaggedHook))
	})
	return logrus.NewEntry(logrus.StandardLogger()).WithField("tag", tag)
}

// SetVerbose switches the standard logger between trace and info level.
func SetVerbose(verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.TraceLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	if formatter, isText := logrus.StandardLogger().Formatter.(*logrus.TextFormatter); isText {
		formatter.ForceColors = verbose
	}
}

type TaggedHook struct{}

func (h *TaggedHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *TaggedHook) Fire(entry *logrus.Entry) error {
	if tagObj, loaded := entry.Data["tag"]; loaded {
		tag, isString := tagObj.(string)
		if !isString {
			return nil
		}
		delete(entry.Data, "tag")
		entry.Message = strings.ReplaceAll(entry.Message, tag+": ", "")
		entry.Message = "[" + tag + "]: " + entry.Message
	}
	return nil
}
