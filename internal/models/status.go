package models

// StatusState is the lifecycle state of a session store.
type StatusState string

const (
	StatusIdle    StatusState = "idle"
	StatusLoading StatusState = "loading"
	StatusReady   StatusState = "ready"
	StatusError   StatusState = "error"
)

// Status describes the outcome of a store's most recent operation.
// Message is only set in the error state.
type Status struct {
	State   StatusState `json:"state"`
	Message string      `json:"message,omitempty"`
}

func (s Status) IsLoading() bool { return s.State == StatusLoading }
func (s Status) IsError() bool   { return s.State == StatusError }
func (s Status) IsReady() bool   { return s.State == StatusReady }

// Loading returns the loading status.
func Loading() Status { return Status{State: StatusLoading} }

// Ready returns the ready status with no message.
func Ready() Status { return Status{State: StatusReady} }

// Failed returns an error status. An empty message is replaced so the error
// state always carries text.
func Failed(message string) Status {
	if message == "" {
		message = "request failed"
	}
	return Status{State: StatusError, Message: message}
}
