package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// doneSentinel is the backend's literal end-of-stream marker in SSE framing.
const doneSentinel = "[DONE]"

// Stream yields incremental answer segments from a chat-completion stream.
// Recv returns io.EOF once the backend sends its termination sentinel.
// Individual malformed events are skipped, not surfaced: losing one delta
// beats aborting the whole answer mid-sentence. Transport errors end the
// stream with the error.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: body, scanner: scanner}
}

type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Recv returns the next non-empty content segment, or io.EOF at the end of
// the stream.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		if payload == doneSentinel {
			s.done = true
			return "", io.EOF
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			// Lossy recovery: skip the one malformed frame.
			continue
		}
		if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
			continue
		}
		return event.Choices[0].Delta.Content, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying connection. Safe to call before the stream
// is drained; the consumer may terminate early without error.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}
