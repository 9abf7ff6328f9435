package fm

import (
	"encoding/json"
	"errors"
	"fmt"
)

type CommandKind uint8

const (
	NoteOn CommandKind = iota + 1
	NoteOff
)

func (k CommandKind) String() string {
	switch k {
	case NoteOn:
		return "noteOn"
	case NoteOff:
		return "noteOff"
	}
	return fmt.Sprintf("CommandKind(%d)", k)
}

// A Command is a control message for the voice.
type Command struct {
	Kind CommandKind
	Key  int
}

func NoteOnCommand(key int) Command  { return Command{NoteOn, key} }
func NoteOffCommand(key int) Command { return Command{NoteOff, key} }

func (c Command) String() string { return fmt.Sprintf("%s(%d)", c.Kind, c.Key) }

// A CommandQueue carries commands from control goroutines to the render
// goroutine.  Sends never block; the render side drains it between blocks.
type CommandQueue struct {
	c chan Command
}

func NewCommandQueue(size int) *CommandQueue {
	if size < 1 {
		size = 1
	}
	return &CommandQueue{c: make(chan Command, size)}
}

// Send enqueues c and reports whether there was room for it.
func (q *CommandQueue) Send(c Command) bool {
	select {
	case q.c <- c:
		return true
	default:
		return false
	}
}

func (q *CommandQueue) Len() int { return len(q.c) }
func (q *CommandQueue) Cap() int { return cap(q.c) }

// ErrKeyRange is returned by ParseMessage for keys outside [MinKey, MaxKey].
var ErrKeyRange = errors.New("key out of range")

// Note is the payload of a noteOn or noteOff record.
type Note struct {
	Key *int `json:"key"`
}

// Message is the wire form of a control record: at most one of NoteOn and
// NoteOff is normally present.
type Message struct {
	NoteOn  *Note `json:"noteOn,omitempty"`
	NoteOff *Note `json:"noteOff,omitempty"`
}

// ParseMessage decodes a JSON record such as {"noteOn":{"key":69}} into the
// commands it carries, noteOn first.  Unknown fields are ignored; a record
// with neither field yields no commands.
func ParseMessage(data []byte) ([]Command, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding control message: %w", err)
	}
	return m.Commands()
}

func (m Message) Commands() ([]Command, error) {
	var cmds []Command
	for _, f := range []struct {
		n    *Note
		kind CommandKind
	}{{m.NoteOn, NoteOn}, {m.NoteOff, NoteOff}} {
		if f.n == nil || f.n.Key == nil {
			continue
		}
		key := *f.n.Key
		if key < MinKey || key > MaxKey {
			return nil, fmt.Errorf("%s: %w: %d", f.kind, ErrKeyRange, key)
		}
		cmds = append(cmds, Command{f.kind, key})
	}
	return cmds, nil
}

// NewMessage is the inverse of ParseMessage for a single command.
func NewMessage(c Command) Message {
	key := c.Key
	n := &Note{Key: &key}
	switch c.Kind {
	case NoteOn:
		return Message{NoteOn: n}
	case NoteOff:
		return Message{NoteOff: n}
	}
	return Message{}
}
