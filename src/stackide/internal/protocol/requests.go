package protocol

import "github.com/uber/stackide-proxy/src/stackide/entity"

// UpdateSession asks the worker to reload the project.
func UpdateSession() Request {
	return Request{Tag: TagRequestUpdateSession, Contents: []string{}}
}

// GetSourceErrors asks for the current compiler errors.
func GetSourceErrors() Request {
	return Request{Tag: TagRequestGetSourceErrors, Contents: []string{}}
}

// GetExpTypes asks for the types of the expressions enclosing span.
func GetExpTypes(span entity.SourceSpan) Request {
	return Request{Tag: TagRequestGetExpTypes, Contents: span}
}

// GetSpanInfo asks for identifier information at span.
func GetSpanInfo(span entity.SourceSpan) Request {
	return Request{Tag: TagRequestGetSpanInfo, Contents: span}
}

// GetAutocompletion asks for completions of prefix in filePath.
func GetAutocompletion(filePath, prefix string) Request {
	return Request{Tag: TagRequestGetAutocompletion, Contents: []string{filePath, prefix}}
}

// ShutdownSession asks the worker to exit.
func ShutdownSession() Request {
	return Request{Tag: TagRequestShutdownSession, Contents: []string{}}
}
