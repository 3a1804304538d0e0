package cargo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MessageKind discriminates the records cargo emits on stdout when run
// with a JSON message format.
type MessageKind int

const (
	// KindTextLine is a line that is not a JSON record (cargo forwards
	// some tool output verbatim).
	KindTextLine MessageKind = iota
	// KindCompilerMessage is a rustc diagnostic.
	KindCompilerMessage
	// KindCompilerArtifact describes one produced compilation unit.
	KindCompilerArtifact
	// KindBuildFinished closes the stream with the overall result.
	KindBuildFinished
	// KindOther covers record kinds this tool does not act on.
	KindOther
)

// Message is one decoded record from cargo's JSON output stream.
type Message struct {
	Kind MessageKind

	// Text is set for KindTextLine.
	Text string
	// Diagnostic is set for KindCompilerMessage.
	Diagnostic Diagnostic
	// Artifact is set for KindCompilerArtifact.
	Artifact Artifact
	// Success is set for KindBuildFinished.
	Success bool
}

// Diagnostic is a rustc diagnostic, optionally with the ANSI-rendered
// form cargo produced for it.
type Diagnostic struct {
	Message  string `json:"message"`
	Rendered string `json:"rendered"`
}

// Target identifies the compilation target an artifact belongs to.
type Target struct {
	Name string   `json:"name"`
	Kind []string `json:"kind"`
}

// Artifact describes one compiled output and, for binaries, benchmarks
// and examples, the path to its executable.
type Artifact struct {
	Target     Target `json:"target"`
	Executable string `json:"executable"`
}

// Kind returns a user-friendly name for the artifact's kind.
func (a Artifact) Kind() string {
	for _, kind := range a.Target.Kind {
		switch kind {
		case "bin":
			return "binary"
		case "bench":
			return "benchmark"
		case "example":
			return "example"
		}
	}
	return "artifact"
}

// DecodeError reports a malformed record in cargo's JSON stream. The
// stream comes from a trusted cargo, so a bad record indicates a version
// mismatch and decoding does not continue past it.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed cargo JSON record %q: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type rawRecord struct {
	Reason  string     `json:"reason"`
	Message Diagnostic `json:"message"`
	Success bool       `json:"success"`
	Artifact
}

// ParseStream decodes cargo's newline-delimited JSON output into the
// messages it contains, in emission order.
func ParseStream(out []byte) ([]Message, error) {
	var messages []Message

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			messages = append(messages, Message{Kind: KindTextLine, Text: line})
			continue
		}

		var record rawRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, &DecodeError{Line: line, Err: err}
		}

		switch record.Reason {
		case "compiler-message":
			messages = append(messages, Message{Kind: KindCompilerMessage, Diagnostic: record.Message})
		case "compiler-artifact":
			messages = append(messages, Message{Kind: KindCompilerArtifact, Artifact: record.Artifact})
		case "build-finished":
			messages = append(messages, Message{Kind: KindBuildFinished, Success: record.Success})
		default:
			messages = append(messages, Message{Kind: KindOther})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan cargo output: %w", err)
	}
	return messages, nil
}

// Render returns the console text for a message, or the empty string for
// messages that carry nothing to show. Diagnostics prefer the
// pre-rendered form when cargo supplied one.
func Render(msg Message) string {
	switch msg.Kind {
	case KindTextLine:
		return msg.Text + "\n"
	case KindCompilerMessage:
		if msg.Diagnostic.Rendered != "" {
			return msg.Diagnostic.Rendered
		}
		return msg.Diagnostic.Message
	default:
		return ""
	}
}

// RenderStream decodes out and concatenates the rendered form of every
// message. Used to reconstruct a human-readable transcript from buffered
// build output on the failure path.
func RenderStream(out []byte) (string, error) {
	messages, err := ParseStream(out)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(Render(msg))
	}
	return b.String(), nil
}
