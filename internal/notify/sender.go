package notify

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/nhle/marksync/internal/logger"
)

// ExecSender delivers desktop notifications by shelling out to notify-send
// (libnotify).
type ExecSender struct {
	command string
}

// NewExecSender creates a sender using the given command, defaulting to
// notify-send when empty.
func NewExecSender(command string) *ExecSender {
	if command == "" {
		command = "notify-send"
	}
	return &ExecSender{command: command}
}

// Send invokes the notification command with the title and message.
func (s *ExecSender) Send(ctx context.Context, title, message string) error {
	cmd := exec.CommandContext(ctx, s.command, "--app-name=marksync", title, message)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w: %s", s.command, err, out)
	}
	return nil
}

// LogSender writes notifications to the log instead of the desktop. It is
// the fallback when no notification command is available (e.g., headless
// hosts).
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.Child("Desktop")}
}

// Send logs the notification at INFO.
func (s *LogSender) Send(_ context.Context, title, message string) error {
	s.log.Info(title, logger.String("message", message))
	return nil
}
