// Package protocol implements the line-delimited JSON messages exchanged with stack-ide workers.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
)

// Tag names the kind of a message.
type Tag string

// Requests produced by the proxy.
const (
	TagRequestUpdateSession     Tag = "RequestUpdateSession"
	TagRequestGetSourceErrors   Tag = "RequestGetSourceErrors"
	TagRequestGetExpTypes       Tag = "RequestGetExpTypes"
	TagRequestGetSpanInfo       Tag = "RequestGetSpanInfo"
	TagRequestGetAutocompletion Tag = "RequestGetAutocompletion"
	TagRequestShutdownSession   Tag = "RequestShutdownSession"
)

// Notifications understood by the proxy.
const (
	TagResponseWelcome       Tag = "ResponseWelcome"
	TagResponseUpdateSession Tag = "ResponseUpdateSession"
)

const _progressField = "progressParsedMsg"

// Request is an outbound message. Seq is only set when a response is expected.
type Request struct {
	Tag      Tag         `json:"tag"`
	Contents interface{} `json:"contents"`
	Seq      string      `json:"seq,omitempty"`
}

// Inbound is a decoded message from a worker. It is one of Reply, Welcome, SessionUpdate or Unrecognized.
type Inbound interface {
	inbound()
}

// Reply answers a request that carried a seq.
type Reply struct {
	Seq string
	Tag Tag
	// Contents is nil when the worker sent none.
	Contents json.RawMessage
}

// Welcome is the first message of a worker, advertising its protocol version.
type Welcome struct {
	Version Version
}

// SessionUpdate reports session progress.
type SessionUpdate struct {
	// Progress is the human-readable progress message, empty if none was sent.
	Progress string
	Contents json.RawMessage
}

// Unrecognized is any message without a seq that the proxy does not handle.
type Unrecognized struct {
	Tag Tag
	Raw json.RawMessage
}

func (Reply) inbound()         {}
func (Welcome) inbound()       {}
func (SessionUpdate) inbound() {}
func (Unrecognized) inbound()  {}

type envelope struct {
	Tag      Tag             `json:"tag"`
	Contents json.RawMessage `json:"contents"`
	Seq      *string         `json:"seq"`
}

// Encode renders the request as a single line of JSON terminated by a newline.
func Encode(req Request) ([]byte, error) {
	if req.Contents == nil {
		req.Contents = []string{}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", req.Tag, err)
	}
	return append(data, '\n'), nil
}

// Decode parses a single line from a worker.
// Lines that are not JSON objects return an error wrapping errors.ErrDecode.
func Decode(line []byte) (Inbound, error) {
	line = bytes.TrimSpace(line)
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecode, err)
	}

	if env.Seq != nil {
		return Reply{Seq: *env.Seq, Tag: env.Tag, Contents: contentsOrNil(env.Contents)}, nil
	}

	switch env.Tag {
	case TagResponseWelcome:
		var got []int
		if err := json.Unmarshal(env.Contents, &got); err == nil {
			if v, err := VersionFromSlice(got); err == nil {
				return Welcome{Version: v}, nil
			}
		}
	case TagResponseUpdateSession:
		return SessionUpdate{Progress: progressMessage(env.Contents), Contents: contentsOrNil(env.Contents)}, nil
	}
	return Unrecognized{Tag: env.Tag, Raw: json.RawMessage(line)}, nil
}

// HasContents reports whether raw holds a JSON value other than null.
func HasContents(raw json.RawMessage) bool {
	return contentsOrNil(raw) != nil
}

func contentsOrNil(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}

// progressMessage finds the progress text either directly in the contents or one tagged level down.
func progressMessage(raw json.RawMessage) string {
	if !HasContents(raw) {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	if msg, ok := fields[_progressField]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			return s
		}
	}
	if nested, ok := fields["contents"]; ok {
		return progressMessage(nested)
	}
	return ""
}
