package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"vaultcapture/internal/jobs"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusColor(status jobs.Status) string {
	switch status {
	case jobs.StatusQueued:
		return ansiBlue
	case jobs.StatusProcessing:
		return ansiYellow
	case jobs.StatusCompleted:
		return ansiGreen
	case jobs.StatusFailed:
		return ansiRed
	case jobs.StatusCancelled:
		return ansiGray
	default:
		return ""
	}
}

func renderStatus(status jobs.Status, colorize bool) string {
	if colorize {
		if color := statusColor(status); color != "" {
			return color + string(status) + ansiReset
		}
	}
	return string(status)
}

func formatSize(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}

func formatWhen(ms int64, now time.Time) string {
	if ms <= 0 {
		return "-"
	}
	t := time.UnixMilli(ms)
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04"), humanize.RelTime(t, now, "ago", "from now"))
}

func shortHash(sum string) string {
	if len(sum) <= 12 {
		return sum
	}
	return sum[:12]
}
