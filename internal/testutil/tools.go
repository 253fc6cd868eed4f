package testutil

import (
	"context"
	"errors"
)

// Tools fakes executables on PATH: each key resolves, and running it prints
// its value. A value of "FAIL" makes the command exit with an error.
type Tools map[string]string

// GoTools is a toolchain that reports go1.24.1.
func GoTools() Tools {
	return Tools{"go": "go version go1.24.1 linux/amd64\n"}
}

func (f Tools) LookPath(name string) (string, error) {
	if _, ok := f[name]; !ok {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + name, nil
}

func (f Tools) Exec(_ context.Context, _, name string, _ ...string) ([]byte, error) {
	out, ok := f[name]
	if !ok || out == "FAIL" {
		return nil, errors.New("exit status 2")
	}
	return []byte(out), nil
}
