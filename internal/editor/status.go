package editor

// Notice is one user-visible message.
type Notice struct {
	Text  string
	Error bool
}

// StatusLine is a Notifier that keeps every notice in order.
type StatusLine struct {
	notices []Notice
}

func (s *StatusLine) Info(msg string) { s.notices = append(s.notices, Notice{Text: msg}) }
func (s *StatusLine) Error(msg string) { s.notices = append(s.notices, Notice{Text: msg, Error: true}) }

// Last returns the most recent notice.
func (s *StatusLine) Last() (Notice, bool) {
	if len(s.notices) == 0 {
		return Notice{}, false
	}
	return s.notices[len(s.notices)-1], true
}

func (s *StatusLine) Notices() []Notice {
	return append([]Notice(nil), s.notices...)
}

func (s *StatusLine) Clear() { s.notices = nil }
