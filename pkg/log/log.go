/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type LogLevel int

const (
	LogPrefix     = "[go-thw] "
	ErrorPrefix   = "[error] "
	WarningPrefix = "[warn] "
	InfoPrefix    = "[info] "
	DebugPrefix   = "[debug] "
	HelpLevels    = "Must be one of: error, warning, info, debug."
)

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

type Logger struct {
	mu    sync.Mutex
	level LogLevel
	out   io.Writer
	*log.Logger
}

var logger = &Logger{
	level:  InfoLevel,
	out:    os.Stderr,
	Logger: log.New(os.Stderr, LogPrefix, log.LstdFlags),
}

var levelMapping = map[string]LogLevel{
	"error":   ErrorLevel,
	"warn":    WarningLevel,
	"warning": WarningLevel,
	"info":    InfoLevel,
	"debug":   DebugLevel,
}

func ParseLevel(strLevel string) (LogLevel, error) {
	level, ok := levelMapping[strings.ToLower(strings.TrimSpace(strLevel))]
	if !ok {
		return InfoLevel, errors.New("Wrong log level. " + HelpLevels)
	}
	return level, nil
}

func SetLevel(strLevel string) error {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return err
	}
	logger.mu.Lock()
	logger.level = level
	logger.mu.Unlock()
	return nil
}

func Level() LogLevel {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	return logger.level
}

// Init points the logger to out. An empty level keeps the current one.
func Init(out io.Writer, strLevel string) error {
	logger.mu.Lock()
	logger.out = out
	logger.SetOutput(out)
	logger.mu.Unlock()
	if strLevel == "" {
		return nil
	}
	return SetLevel(strLevel)
}

// Writer returns the current log destination, e.g. for HTTP access logs.
func Writer() io.Writer {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	return logger.out
}

func logf(level LogLevel, prefix, format string, v ...interface{}) {
	if Level() >= level {
		logger.Println(fmt.Sprintf(prefix+format, v...))
	}
}

func Error(format string, v ...interface{}) {
	logf(ErrorLevel, ErrorPrefix, format, v...)
}

func Warning(format string, v ...interface{}) {
	logf(WarningLevel, WarningPrefix, format, v...)
}

func Info(format string, v ...interface{}) {
	logf(InfoLevel, InfoPrefix, format, v...)
}

func Debug(format string, v ...interface{}) {
	logf(DebugLevel, DebugPrefix, format, v...)
}
