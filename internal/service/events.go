package service

// EventType tags one record of a generation stream.
type EventType string

const (
	EventToken   EventType = "token"
	EventSources EventType = "sources"
	EventError   EventType = "error"
)

// Event is one streamed record. Errors terminate the stream; the sources
// event is always the last record of a successful chat stream.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Source describes one retrieved chunk in the terminal sources event.
type Source struct {
	Page    int    `json:"page"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

func tokenEvent(data string) Event {
	return Event{Type: EventToken, Data: data}
}

func sourcesEvent(sources []Source) Event {
	return Event{Type: EventSources, Data: sources}
}

func errorEvent(err error) Event {
	return Event{Type: EventError, Data: err.Error()}
}
