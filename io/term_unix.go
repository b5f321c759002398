//go:build !windows

package snapio

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const isWindows = false

type unixTerminal struct {
	once  sync.Once
	level int
}

func newTerminal() terminal { return &unixTerminal{} }

func (u *unixTerminal) isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (u *unixTerminal) enableVirtualTerminal() bool { return true }
func (u *unixTerminal) vtEnabled() bool             { return true }

// colorLevel asks terminfo once through tput.
func (u *unixTerminal) colorLevel() int {
	u.once.Do(func() {
		if exec.Command("tput", "RGB").Run() == nil {
			u.level = 3
			return
		}
		out, err := exec.Command("tput", "colors").Output()
		if err != nil {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(out)))
		switch {
		case err != nil:
		case n >= 1<<24:
			u.level = 3
		case n >= 256:
			u.level = 2
		case n >= 8:
			u.level = 1
		}
	})
	return u.level
}
