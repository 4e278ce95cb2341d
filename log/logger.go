// Copyright (C) 2024 XELIS
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package log

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// LogLevel 0 prints info, warnings and errors; 1 adds debug; 2 adds dev and
// network messages.
var LogLevel uint8 = 0

var Stdout io.Writer = os.Stdout
var Stderr io.Writer = os.Stderr

// Colors enables ANSI colors. It defaults to whether stdout is a terminal.
var Colors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

var writeMut sync.Mutex

func getLogPrefix() string {
	_, file, line, _ := runtime.Caller(3)
	fileSpl := strings.Split(file, "/")
	debugInfos := strings.Split(fileSpl[len(fileSpl)-1], ".")[0] + ":" + strconv.Itoa(line)
	for len(debugInfos) < 18 {
		debugInfos += " "
	}
	return debugInfos
}

func write(w io.Writer, color, tag, msg string) {
	var sb strings.Builder
	sb.WriteString(getLogPrefix())
	if Colors {
		sb.WriteString(color)
	}
	sb.WriteString(tag)
	sb.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		sb.WriteByte('\n')
	}
	if Colors {
		sb.WriteString(reset)
	}

	writeMut.Lock()
	defer writeMut.Unlock()
	w.Write([]byte(sb.String()))
}

func Info(a ...any) {
	write(Stdout, "", "[INFO]  ", fmt.Sprintln(a...))
}
func Infof(format string, a ...any) {
	write(Stdout, "", "[INFO]  ", fmt.Sprintf(format, a...))
}

func Warn(a ...any) {
	write(Stdout, yellow, "[WARN]  ", fmt.Sprintln(a...))
}
func Warnf(format string, a ...any) {
	write(Stdout, yellow, "[WARN]  ", fmt.Sprintf(format, a...))
}

func Err(a ...any) {
	write(Stderr, red, "[ERR]   ", fmt.Sprintln(a...))
}
func Errf(format string, a ...any) {
	write(Stderr, red, "[ERR]   ", fmt.Sprintf(format, a...))
}

func Debug(a ...any) {
	if LogLevel < 1 {
		return
	}
	write(Stdout, cyan, "[DEBUG] ", fmt.Sprintln(a...))
}
func Debugf(format string, a ...any) {
	if LogLevel < 1 {
		return
	}
	write(Stdout, cyan, "[DEBUG] ", fmt.Sprintf(format, a...))
}

func Dev(a ...any) {
	if LogLevel < 2 {
		return
	}
	write(Stdout, cyan, "[DEV]   ", fmt.Sprintln(a...))
}
func Devf(format string, a ...any) {
	if LogLevel < 2 {
		return
	}
	write(Stdout, cyan, "[DEV]   ", fmt.Sprintf(format, a...))
}

func Net(a ...any) {
	if LogLevel < 2 {
		return
	}
	write(Stdout, green, "[NET]   ", fmt.Sprintln(a...))
}
func Netf(format string, a ...any) {
	if LogLevel < 2 {
		return
	}
	write(Stdout, green, "[NET]   ", fmt.Sprintf(format, a...))
}

// Fatal logs err and exits with status 1.
func Fatal(err any) {
	write(Stderr, red, "[FATAL] ", fmt.Sprintln(err))
	os.Exit(1)
}
