package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PabloGalante/agent-chat/internal/app/chat"
	"github.com/PabloGalante/agent-chat/internal/domain"
)

// RunLines is the non-interactive front end: one submission per input line,
// each message printed as it is appended. "/quit" or EOF ends the loop.
func RunLines(ctx context.Context, session *chat.Session, in io.Reader, out io.Writer) error {
	session.OnChange(func(c chat.Change) {
		if c.Message != nil && c.Message.Role != domain.RoleUser {
			fmt.Fprintln(out, formatLine(c.Message))
		}
	})

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}

		ex, err := session.Submit(ctx, line)
		if errors.Is(err, chat.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return err
		}

		select {
		case <-ex.Done():
		case <-ctx.Done():
			ex.Cancel()
			<-ex.Done()
			return ctx.Err()
		}
	}
	return scanner.Err()
}
