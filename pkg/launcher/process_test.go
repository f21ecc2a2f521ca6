package launcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. Spawn tests run the test binary
// itself as the game process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("CATCLIENT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("CATCLIENT_HELPER_MODE") {
	case "crash":
		fmt.Fprintln(os.Stderr, "Error: Could not find or load main class net.minecraft.client.main.Main")
		os.Exit(1)
	case "exit":
		fmt.Println("bye")
		os.Exit(0)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Println(wd)
		time.Sleep(time.Minute)
	default:
		time.Sleep(time.Minute)
	}
	os.Exit(0)
}

func helperArgv(t *testing.T, mode string) []string {
	t.Helper()
	t.Setenv("CATCLIENT_HELPER_PROCESS", "1")
	t.Setenv("CATCLIENT_HELPER_MODE", mode)
	return []string{os.Args[0], "-test.run=^TestHelperProcess$"}
}

func TestSpawnEarlyCrash(t *testing.T) {
	dir := t.TempDir()
	l := NewProcessLauncher(filepath.Join(dir, "logs", "launch.log")).WithGracePeriod(10 * time.Second)

	start := time.Now()
	p, err := l.Spawn(context.Background(), helperArgv(t, "crash"), dir)

	var failed *LaunchSpawnFailed
	require.ErrorAs(t, err, &failed)
	assert.Nil(t, p)
	assert.Contains(t, failed.Output, "Could not find or load main class")
	assert.Less(t, time.Since(start), 10*time.Second, "a crash ends the grace window early")
}

func TestSpawnSurvivesGraceWindow(t *testing.T) {
	dir := t.TempDir()
	l := NewProcessLauncher(filepath.Join(dir, "launch.log")).WithGracePeriod(300 * time.Millisecond)

	p, err := l.Spawn(context.Background(), helperArgv(t, "pwd"), dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Kill() })

	assert.NotZero(t, p.Pid())
	assert.False(t, p.Exited())

	require.Eventually(t, func() bool {
		data, _ := os.ReadFile(p.LogPath)
		return strings.TrimSpace(string(data)) != ""
	}, 5*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(p.LogPath)
	require.NoError(t, err)
	wd, err := filepath.EvalSymlinks(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, wd)

	require.NoError(t, p.Kill())
	assert.Error(t, p.Wait())
	assert.True(t, p.Exited())
}

func TestSpawnCleanExitIsNotAFailure(t *testing.T) {
	dir := t.TempDir()
	l := NewProcessLauncher(filepath.Join(dir, "launch.log")).WithGracePeriod(10 * time.Second)

	p, err := l.Spawn(context.Background(), helperArgv(t, "exit"), dir)
	require.NoError(t, err)
	assert.True(t, p.Exited())
	assert.NoError(t, p.Wait())
}

func TestSpawnMissingBinary(t *testing.T) {
	dir := t.TempDir()
	l := NewProcessLauncher(filepath.Join(dir, "launch.log"))

	_, err := l.Spawn(context.Background(), []string{filepath.Join(dir, "no-such-java")}, dir)

	var failed *LaunchSpawnFailed
	assert.ErrorAs(t, err, &failed)

	_, err = l.Spawn(context.Background(), nil, dir)
	assert.ErrorAs(t, err, &failed)
}

func TestReadTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 100)+"tail"), 0o644))

	assert.Equal(t, "aaaatail", readTail(path, 8))
	assert.Empty(t, readTail(filepath.Join(t.TempDir(), "missing"), 8))
}
