// Package shellsetup emits the shell function that makes "quit and cd"
// work: the binary writes the chosen directory to a temp file and the
// wrapper cds there after it exits.
package shellsetup

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

func PrintSetup(shellOverride string) {
	shell := normalizeShellName(shellOverride)
	if shell == "" {
		shell = normalizeShellName(os.Getenv("SHELL"))
	}
	if shell == "" {
		shell = "bash"
	}

	binPath, err := os.Executable()
	if err != nil {
		binPath = "dtree"
	}
	quoted := strconv.Quote(binPath)

	switch shell {
	case "fish":
		fmt.Printf(`function dtree
    if test (count $argv) -gt 0
        command %s $argv
        return $status
    end

    command %s &
    set dtree_pid $last_pid
    wait $dtree_pid

    set result_file "$TMPDIR/dtree_result_$dtree_pid.txt"
    if test -f "$result_file" -a ! -L "$result_file" -a -O "$result_file"
        set dest (cat "$result_file" 2>/dev/null)
        if test -d "$dest" 2>/dev/null
            builtin cd "$dest"
        end
    end
    rm -f "$result_file" 2>/dev/null
end
`, quoted, quoted)
	default:
		// bash, zsh, sh, ksh and anything POSIX enough
		fmt.Printf(`dtree() {
    if [ "$#" -gt 0 ]; then
        command %s "$@"
        return $?
    fi

    command %s &
    dtree_pid=$!
    wait $dtree_pid

    result_file="${TMPDIR:-/tmp}/dtree_result_$dtree_pid.txt"
    if [ -f "$result_file" ] && [ ! -L "$result_file" ] && [ -O "$result_file" ]; then
        dest=$(cat "$result_file" 2>/dev/null)
        rm -f "$result_file"
        if [ -d "$dest" ] 2>/dev/null; then
            cd "$dest"
        fi
    else
        rm -f "$result_file" 2>/dev/null
    fi
}
`, quoted, quoted)
	}
}

func normalizeShellName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	value = strings.Trim(value, `"'`)
	value = strings.ReplaceAll(value, "\\", "/")
	base := path.Base(value)
	base = strings.ToLower(base)
	base = strings.TrimSuffix(base, ".exe")
	return strings.TrimSpace(base)
}
