package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Launcher spawns the core process.
type Launcher interface {
	Launch(ctx context.Context) (Handle, error)
}

// LaunchFunc adapts a function to the Launcher interface.
type LaunchFunc func(ctx context.Context) (Handle, error)

// Launch calls f(ctx).
func (f LaunchFunc) Launch(ctx context.Context) (Handle, error) { return f(ctx) }

// ExecLauncher starts the core as a child process.
type ExecLauncher struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the shell's environment
	Stdout  io.Writer
	Stderr  io.Writer
}

// Launch starts the command. The child is not tied to ctx: it outlives the
// request that started it and is stopped through its Handle.
func (l *ExecLauncher) Launch(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Command == "" {
		return nil, fmt.Errorf("no core command configured")
	}

	path, err := exec.LookPath(l.Command)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, l.Args...)
	cmd.Dir = l.Dir
	cmd.Env = append(os.Environ(), l.Env...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.Stdin = nil
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return newProcessHandle(cmd), nil
}

// Default rotation settings for core output files.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// LogFiles describes where the core's stdout and stderr are written.
// Files are <Dir>/<name>.stdout.log and <Dir>/<name>.stderr.log.
type LogFiles struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Writers returns rotating writers for the named process. Both are nil when
// Dir is empty.
func (c LogFiles) Writers(name string) (io.WriteCloser, io.WriteCloser) {
	if c.Dir == "" {
		return nil, nil
	}
	return c.writer(filepath.Join(c.Dir, name+".stdout.log")),
		c.writer(filepath.Join(c.Dir, name+".stderr.log"))
}

func (c LogFiles) writer(path string) io.WriteCloser {
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
