package testutil

import "sync"

// SinkCall is one call received by a RecordingSink
type SinkCall struct {
	Method string // "image", "no_results" or "status"
	Text   string // title for images, message otherwise
	Data   []byte
}

// RecordingSink records display calls in order
type RecordingSink struct {
	// SaveErr is returned by Err, simulating a sink that cannot keep images
	SaveErr error

	mu    sync.Mutex
	calls []SinkCall
}

// ShowImage records an image
func (s *RecordingSink) ShowImage(data []byte, title string) {
	s.record(SinkCall{Method: "image", Text: title, Data: data})
}

// ShowNoResults records a no-results message
func (s *RecordingSink) ShowNoResults(message string) {
	s.record(SinkCall{Method: "no_results", Text: message})
}

// ShowStatus records a status line
func (s *RecordingSink) ShowStatus(text string) {
	s.record(SinkCall{Method: "status", Text: text})
}

// Err returns SaveErr
func (s *RecordingSink) Err() error {
	return s.SaveErr
}

// Calls returns a copy of the recorded calls
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SinkCall(nil), s.calls...)
}

// Last returns the most recent call of the given method
func (s *RecordingSink) Last(method string) (SinkCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].Method == method {
			return s.calls[i], true
		}
	}
	return SinkCall{}, false
}

func (s *RecordingSink) record(c SinkCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}
