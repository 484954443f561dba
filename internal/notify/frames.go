package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Frame types of the live-push protocol.
const (
	FrameReminder   = "reminder"
	FrameUserStatus = "user_status"
	FramePing       = "ping"
	FramePong       = "pong"
)

// ReminderFrame is pushed to a recipient when a reminder is delivered.
type ReminderFrame struct {
	Type         string    `json:"type"`
	ReminderID   uuid.UUID `json:"reminder_id"`
	TaskTitle    string    `json:"task_title"`
	Message      string    `json:"message"`
	ReminderTime time.Time `json:"reminder_time"`
	Timestamp    time.Time `json:"timestamp"`
}

// PresenceFrame lists the recipients currently online.
type PresenceFrame struct {
	Type        string      `json:"type"`
	OnlineUsers []uuid.UUID `json:"online_users"`
	Timestamp   time.Time   `json:"timestamp"`
}

// controlFrame is a heartbeat frame.
type controlFrame struct {
	Type string `json:"type"`
}

// EncodeFrame marshals v as a single newline-terminated JSON frame.
func EncodeFrame(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(data, '\n'), nil
}

// PongFrame returns the heartbeat reply frame.
func PongFrame() []byte {
	data, _ := EncodeFrame(controlFrame{Type: FramePong})
	return data
}

// FrameType extracts the type field of an inbound frame.
func FrameType(data []byte) (string, error) {
	var f controlFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}
	if f.Type == "" {
		return "", fmt.Errorf("decode frame: missing type")
	}
	return f.Type, nil
}
