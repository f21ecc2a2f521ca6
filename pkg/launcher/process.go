package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/havrydotdev/catclient/pkg/utils"
)

const outputTailSize = 8 << 10

// LaunchSpawnFailed is returned when the game could not be started or died
// inside the grace window. Output holds the tail of what it printed.
type LaunchSpawnFailed struct {
	Cause  error
	Output string
}

func (e *LaunchSpawnFailed) Error() string {
	return fmt.Sprintf("failed to launch game: %v", e.Cause)
}

func (e *LaunchSpawnFailed) Unwrap() error {
	return e.Cause
}

type Spawner interface {
	Spawn(ctx context.Context, argv []string, dir string) (*Process, error)
}

// Process is a game started by ProcessLauncher. It is reaped in the
// background; nothing is required of the caller.
type Process struct {
	LogPath string

	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *Process) Pid() int {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Exited reports whether the process has already been reaped.
func (p *Process) Exited() bool {
	if p == nil || p.done == nil {
		return true
	}

	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Process) Wait() error {
	if p == nil || p.done == nil {
		return nil
	}
	<-p.done
	return p.err
}

func (p *Process) Kill() error {
	if p == nil || p.cmd == nil || p.cmd.Process == nil || p.Exited() {
		return nil
	}
	return p.cmd.Process.Kill()
}

type ProcessLauncher struct {
	logPath string
	grace   time.Duration
	log     *slog.Logger
}

// NewProcessLauncher redirects the game's stdout and stderr into logPath.
func NewProcessLauncher(logPath string) *ProcessLauncher {
	return &ProcessLauncher{
		logPath: logPath,
		grace:   utils.DefaultGracePeriod,
		log:     slog.Default(),
	}
}

func (l *ProcessLauncher) WithGracePeriod(grace time.Duration) *ProcessLauncher {
	if grace > 0 {
		l.grace = grace
	}
	return l
}

func (l *ProcessLauncher) WithLogger(log *slog.Logger) *ProcessLauncher {
	l.log = log
	return l
}

// Spawn starts argv in dir and watches it for the grace window. A non-zero
// exit inside the window is a LaunchSpawnFailed; a process still running
// after it counts as launched.
func (l *ProcessLauncher) Spawn(ctx context.Context, argv []string, dir string) (*Process, error) {
	if len(argv) == 0 {
		return nil, &LaunchSpawnFailed{Cause: errors.New("empty command")}
	}

	if err := os.MkdirAll(filepath.Dir(l.logPath), os.ModePerm); err != nil {
		return nil, &LaunchSpawnFailed{Cause: err}
	}

	out, err := os.Create(l.logPath)
	if err != nil {
		return nil, &LaunchSpawnFailed{Cause: err}
	}
	defer out.Close()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, &LaunchSpawnFailed{Cause: err}
	}

	p := &Process{LogPath: l.logPath, cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()

	l.log.Info("started game", slog.Int("pid", p.Pid()), slog.String("log", l.logPath))

	timer := time.NewTimer(l.grace)
	defer timer.Stop()

	select {
	case <-p.done:
		if p.err != nil {
			return nil, &LaunchSpawnFailed{Cause: p.err, Output: readTail(l.logPath, outputTailSize)}
		}
		l.log.Info("game exited inside grace window", slog.Int("pid", p.Pid()))
		return p, nil
	case <-timer.C:
		return p, nil
	case <-ctx.Done():
		_ = p.Kill()
		<-p.done
		return nil, &LaunchSpawnFailed{Cause: ctx.Err(), Output: readTail(l.logPath, outputTailSize)}
	}
}

func readTail(path string, max int64) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return ""
	}

	if info.Size() > max {
		if _, err := file.Seek(info.Size()-max, io.SeekStart); err != nil {
			return ""
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return ""
	}

	return string(data)
}
