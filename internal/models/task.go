package models

// TaskStatus defines lifecycle states for async tasks. The sequence is
// pending -> running -> completed or failed; terminal states never
// change again.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task tracks one submitted async job.
type Task struct {
	ID           string     `json:"id"`
	Status       TaskStatus `json:"status"`
	Progress     int        `json:"progress"`
	ErrorCode    string     `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Terminal reports whether a status is final.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}
