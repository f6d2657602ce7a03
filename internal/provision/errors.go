package provision

import "fmt"

// RemoteLookupError is an existence check that failed after retries.
type RemoteLookupError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *RemoteLookupError) Error() string {
	return fmt.Sprintf("lookup %s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *RemoteLookupError) Unwrap() error { return e.Err }

// RemoteCreateError is a create call that failed after retries.
type RemoteCreateError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *RemoteCreateError) Error() string {
	return fmt.Sprintf("create %s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *RemoteCreateError) Unwrap() error { return e.Err }

// LocalIOError is a local folder or file write failure.
type LocalIOError struct {
	ID  string
	Err error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("local mirror %q: %v", e.ID, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }
