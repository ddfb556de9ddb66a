package appliance

import "fmt"

type RemoteCommandError struct {
	Command string
	Output  string
	Err     error
}

func (e RemoteCommandError) Error() string {
	return fmt.Sprintf("remote command failed: %s - %s: %v", e.Command, e.Output, e.Err)
}

func (e RemoteCommandError) Unwrap() error {
	return e.Err
}
