// log/stack.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const maxFrames = 16

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}

// Frames is a call stack, innermost frame first. It's logged as a list
// of "file:line:function" strings.
type Frames []StackFrame

func (fr Frames) LogValue() slog.Value {
	s := make([]string, len(fr))
	for i, f := range fr {
		s[i] = f.String()
	}
	return slog.AnyValue(s)
}

// Callstack returns the call stack starting at its caller, less the
// innermost skip frames. It stops at main.main so that runtime frames
// aren't included.
func Callstack(skip int) Frames {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])

	fr := make(Frames, 0, n)
	for {
		frame, more := frames.Next()
		fn := strings.TrimPrefix(frame.Function, "github.com/mmp/cifp/")
		fn = strings.TrimPrefix(fn, "main.")
		fr = append(fr, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: fn,
		})
		if !more || frame.Function == "main.main" {
			return fr
		}
	}
}
