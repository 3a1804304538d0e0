package rustc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoHostLine means rustc ran but its verbose version output did not
// contain a host target line.
var ErrNoHostLine = errors.New("no host line in rustc output")

const hostField = "host: "

// DefaultTarget returns the target triple rustc compiles for on this
// machine, parsed from `rustc -vV`.
func DefaultTarget() (string, error) {
	out, err := exec.Command("rustc", "-vV").Output()
	if err != nil {
		return "", fmt.Errorf("run rustc -vV: %w", err)
	}
	return parseHostTarget(out)
}

func parseHostTarget(out []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, hostField) {
			return strings.TrimSpace(line[len(hostField):]), nil
		}
	}
	return "", ErrNoHostLine
}
