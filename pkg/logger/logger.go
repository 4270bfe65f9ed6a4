package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

var levels = map[string]zerolog.Level{
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"disabled": zerolog.Disabled,
}

func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "???"
		},
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log = zerolog.New(output).With().Timestamp().Logger()
}

// SetLevel changes the global logging level.
func SetLevel(levelStr string) {
	if level, ok := levels[strings.ToLower(levelStr)]; ok {
		zerolog.SetGlobalLevel(level)
	} else {
		fmt.Fprintf(os.Stderr, "Unknown log level '%s', leaving at current level\n", levelStr)
	}
}

func Debug(msg string, keysAndValues ...interface{}) {
	logEvent(log.Debug(), msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	logEvent(log.Info(), msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	logEvent(log.Warn(), msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	logEvent(log.Error(), msg, keysAndValues...)
}

// Fatal logs the message and exits.
func Fatal(msg string, keysAndValues ...interface{}) {
	logEvent(log.Fatal(), msg, keysAndValues...)
}

func logEvent(event *zerolog.Event, msg string, keysAndValues ...interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			event = event.AnErr(key, err)
		} else {
			event = event.Interface(key, keysAndValues[i+1])
		}
	}
	if len(keysAndValues)%2 == 1 {
		event = event.Interface("orphaned", keysAndValues[len(keysAndValues)-1])
	}
	event.Msg(msg)
}
