package fm

// NoteState is the voice's position in its two-state note machine.
type NoteState int

const (
	Idle NoteState = iota
	Sounding
)

func (s NoteState) String() string {
	if s == Sounding {
		return "sounding"
	}
	return "idle"
}

// A VoiceController owns the VoiceState and applies note commands to it and
// to the operators.  The voice is monophonic with last-note priority.
type VoiceController struct {
	voice VoiceState
	ops   *[NumOperators]Operator
	queue *CommandQueue
	stats *counters
}

func (c *VoiceController) Voice() *VoiceState { return &c.voice }

func (c *VoiceController) State() NoteState {
	for i := range c.ops {
		if c.ops[i].Sounding() {
			return Sounding
		}
	}
	return Idle
}

// NoteOn retunes the voice to key and gates every operator on, whatever was
// sounding before.
func (c *VoiceController) NoteOn(key int) {
	c.voice.setKey(key)
	for i := range c.ops {
		c.ops[i].Start()
	}
	c.stats.notesOn.Add(1)
}

// NoteOff gates every operator off if key is the current key.  A NoteOff
// for any other key belongs to a superseded note and is ignored.
func (c *VoiceController) NoteOff(key int) {
	if key != c.voice.key {
		c.stats.staleNoteOffs.Add(1)
		return
	}
	for i := range c.ops {
		c.ops[i].Stop()
	}
}

func (c *VoiceController) Apply(cmd Command) {
	switch cmd.Kind {
	case NoteOn:
		c.NoteOn(cmd.Key)
	case NoteOff:
		c.NoteOff(cmd.Key)
	}
}

// Drain applies every queued command.  It must run on the render goroutine,
// between blocks.
func (c *VoiceController) Drain() int {
	n := 0
	for {
		select {
		case cmd := <-c.queue.c:
			c.Apply(cmd)
			n++
		default:
			c.stats.commands.Add(uint64(n))
			return n
		}
	}
}
