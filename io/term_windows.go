//go:build windows

package snapio

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/windows"
)

const isWindows = true

type windowsTerminal struct{}

func newTerminal() terminal { return windowsTerminal{} }

func (windowsTerminal) isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func stdoutMode() (windows.Handle, uint32, bool) {
	h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || h == windows.InvalidHandle {
		return 0, 0, false
	}
	var mode uint32
	if windows.GetConsoleMode(h, &mode) != nil {
		return 0, 0, false
	}
	return h, mode, true
}

func (windowsTerminal) enableVirtualTerminal() bool {
	h, mode, ok := stdoutMode()
	if !ok {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}

func (windowsTerminal) vtEnabled() bool {
	_, mode, ok := stdoutMode()
	return ok && mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0
}

// colorLevel trusts Windows Terminal, ConEmu and any console with VT
// processing to render truecolor.
func (w windowsTerminal) colorLevel() int {
	switch {
	case os.Getenv("WT_SESSION") != "", os.Getenv("ConEmuANSI") == "ON", w.vtEnabled():
		return 3
	case w.isTerminal(os.Stdout):
		return 2
	}
	return 0
}
