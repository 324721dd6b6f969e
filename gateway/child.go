package gateway

import (
	"io"
	"os/exec"
	"sync"
)

// CommandCreator builds the exec.Cmd running the child process; tests
// inject their own to substitute the real command.
type CommandCreator func(name string, args ...string) *exec.Cmd

func defaultCommandCreator(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

// child owns the stdio endpoints of a spawned line protocol process.
// Writes are serialized so concurrent HTTP handlers cannot interleave
// fragments of two messages on the child's stdin.
type child struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	stderr   io.ReadCloser
	writeMux sync.Mutex
}

func startChild(creator CommandCreator, name string, args ...string) (*child, error) {
	cmd := creator(name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &child{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

// write sends one newline terminated message to the child stdin.
func (c *child) write(message []byte) error {
	line := make([]byte, 0, len(message)+1)
	line = append(line, message...)
	line = append(line, '\n')
	c.writeMux.Lock()
	defer c.writeMux.Unlock()
	_, err := c.stdin.Write(line)
	return err
}

// stop closes the child's stdin so a well behaved process exits on its
// own, then waits for termination.
func (c *child) stop() error {
	_ = c.stdin.Close()
	return c.cmd.Wait()
}
