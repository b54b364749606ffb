package chat

import (
	"encoding/json"

	"github.com/Ksaikiran28/NexChat/module/message/model"
)

// Wire frames pushed to clients. Presence always carries the full online
// list rather than deltas, so a reconnecting client gets a consistent
// picture no matter what it missed.
const (
	FrameTypePresence = "presence"
	FrameTypeMessage  = "message"
)

type Frame struct {
	Type    string         `json:"type"`
	Users   []string       `json:"users,omitempty"`
	Message *model.Message `json:"message,omitempty"`
}

func EncodePresenceFrame(users []string) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameTypePresence, Users: users})
}

func EncodeMessageFrame(m *model.Message) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameTypeMessage, Message: m})
}

func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
