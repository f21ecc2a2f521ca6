package utils

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
)

const LogFileName = "catclient.log"

func BuildLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// GetLogWriter returns stdout in dev mode and <gameDir>/catclient.log
// otherwise, falling back to stdout when the file cannot be opened.
func GetLogWriter(gameDir string, isDev bool) io.Writer {
	if isDev {
		return os.Stdout
	}

	if err := os.MkdirAll(gameDir, os.ModePerm); err != nil {
		log.Println("failed to create game dir: ", err)
		return os.Stdout
	}

	file, err := os.Create(filepath.Join(gameDir, LogFileName))
	if err != nil {
		log.Println("failed to open log file: ", err)
		return os.Stdout
	}

	return file
}
