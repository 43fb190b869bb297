package answer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/bilgisen/faithcheck/internal/models"
)

// Event type tags that carry meaning; every other tag is ignored
const (
	EventResponseChunk = "RESPONSE_CHUNK"
	EventCitation      = "CITATION"
)

type event struct {
	Type          string `json:"type"`
	Content       string `json:"content"`
	SequenceIndex int    `json:"sequenceIndex"`
	URL           string `json:"url"`
}

// ProgressFunc observes the accumulated answer after each meaningful frame
type ProgressFunc func(partial models.AnswerResult)

// Accumulator folds stream frames into an AnswerResult in arrival order
type Accumulator struct {
	text      bytes.Buffer
	citations []models.Citation
	skipped   int
}

// Apply decodes one frame. It reports whether the frame changed the result;
// frames that are not valid JSON are counted and dropped.
func (a *Accumulator) Apply(frame []byte) bool {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return false
	}

	var ev event
	if err := json.Unmarshal(frame, &ev); err != nil {
		a.skipped++
		return false
	}

	switch ev.Type {
	case EventResponseChunk:
		a.text.WriteString(ev.Content)
		return true
	case EventCitation:
		a.citations = append(a.citations, models.Citation{SequenceIndex: ev.SequenceIndex, URL: ev.URL})
		return true
	}
	return false
}

// Result returns a snapshot of what has been accumulated so far
func (a *Accumulator) Result() models.AnswerResult {
	return models.AnswerResult{
		Text:      a.text.String(),
		Citations: append([]models.Citation{}, a.citations...),
	}
}

// Skipped reports how many frames failed to decode
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// Decode reads newline-delimited JSON events until end of stream.
// A trailing frame without a newline is used when it is complete JSON
// and discarded otherwise. Read errors other than EOF are returned as is.
func Decode(r io.Reader, acc *Accumulator, onProgress ProgressFunc) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 && acc.Apply(line) && onProgress != nil {
			onProgress(acc.Result())
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
