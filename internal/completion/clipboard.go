package completion

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ErrNoClipboard means no supported clipboard tool is installed.
var ErrNoClipboard = errors.New("completion: no clipboard tool found")

// clipboardTools are tried in order; the first one on PATH wins.
var clipboardTools = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(ctx context.Context, text string) error {
	for _, tool := range clipboardTools {
		path, err := lookPath(tool[0])
		if err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, path, tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	}
	return ErrNoClipboard
}
