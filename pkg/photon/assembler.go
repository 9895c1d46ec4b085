// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import "strings"

// EventKind discriminates completed application-level events.
type EventKind int

// Event kinds
const (
	EventText EventKind = iota
	EventImage
)

// Event is a completed application-level message: either a plain text
// message or a fully reassembled image transfer. Image data is the
// reassembled base64 string, exactly as carried on the wire.
type Event struct {
	Kind EventKind
	Text string
	Name string
	Data string
}

// Assembler is the receive-side frame state machine. It consumes decoded
// characters one at a time, accumulates '#'-to-'*' message bodies,
// dispatches them by payload kind, and tracks the chunked-transfer session.
//
// A '#' always restarts accumulation, so nested or unterminated messages
// cannot occur; a '*' outside a frame is ignored. The chunk session
// survives marker resets because every chunk message carries its own
// '#'/'*' pair.
type Assembler struct {
	recording bool
	buf       strings.Builder

	imageName string
	chunks    []string

	stats   *Statistics
	onEvent func(Event)
}

// NewAssembler creates an assembler dispatching completed events to
// onEvent. The callback runs on the caller's goroutine, synchronously from
// Feed.
func NewAssembler(stats *Statistics, onEvent func(Event)) *Assembler {
	if stats == nil {
		stats = NewStatistics()
	}
	return &Assembler{stats: stats, onEvent: onEvent}
}

// Stats returns the assembler's counters.
func (a *Assembler) Stats() *Statistics {
	return a.stats
}

// Feed advances the state machine by one character.
func (a *Assembler) Feed(c byte) {
	switch c {
	case StartMarker:
		if a.recording && a.buf.Len() > 0 {
			a.stats.FramesAborted++
		}
		a.buf.Reset()
		a.recording = true
		a.stats.FramesStarted++

	case EndMarker:
		if !a.recording {
			a.stats.StrayEndMarkers++
			return
		}
		body := a.buf.String()
		a.buf.Reset()
		a.recording = false
		a.stats.MessagesCompleted++
		a.dispatch(body)

	default:
		if a.recording {
			a.buf.WriteByte(c)
		}
	}
}

// FeedString feeds every character of s in order.
func (a *Assembler) FeedString(s string) {
	for i := 0; i < len(s); i++ {
		a.Feed(s[i])
	}
}

// dispatch routes a completed message body by its payload kind.
func (a *Assembler) dispatch(body string) {
	switch {
	case strings.HasPrefix(body, TagImage+":"):
		// New transfer announced: any half-finished session is gone.
		a.imageName = body[len(TagImage)+1:]
		a.chunks = nil
		a.stats.TransfersAnnounced++

	case strings.HasPrefix(body, TagChunkStart+":"):
		a.chunks = []string{body[len(TagChunkStart)+1:]}
		a.stats.ChunksReceived++

	case strings.HasPrefix(body, TagChunkMid+":"):
		a.chunks = append(a.chunks, body[len(TagChunkMid)+1:])
		a.stats.ChunksReceived++

	case strings.HasPrefix(body, TagChunkEnd+":"):
		a.chunks = append(a.chunks, body[len(TagChunkEnd)+1:])
		a.stats.ChunksReceived++
		a.finishTransfer()

	default:
		if body == "" {
			a.stats.EmptyMessages++
			return
		}
		a.stats.TextMessages++
		a.emit(Event{Kind: EventText, Text: body})
	}
}

// finishTransfer consumes the session: chunks concatenate in arrival order
// into the original base64 string. A transfer with no announced name is
// dropped; there is nowhere to attribute the data.
func (a *Assembler) finishTransfer() {
	name := a.imageName
	chunks := a.chunks
	a.imageName = ""
	a.chunks = nil

	if name == "" || len(chunks) == 0 {
		a.stats.OrphanChunkDrops++
		return
	}

	a.stats.ImagesReassembled++
	a.emit(Event{Kind: EventImage, Name: name, Data: strings.Join(chunks, "")})
}

func (a *Assembler) emit(ev Event) {
	if a.onEvent != nil {
		a.onEvent(ev)
	}
}
