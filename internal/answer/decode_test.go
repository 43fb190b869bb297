package answer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bilgisen/faithcheck/internal/models"
)

func TestDecodeAccumulatesInArrivalOrder(t *testing.T) {
	stream := strings.Join([]string{
		`{"type":"RESPONSE_CHUNK","content":"Perigon Response: "}`,
		`{"type":"CITATION","sequenceIndex":2,"url":"https://b"}`,
		`{"type":"RESPONSE_CHUNK","content":"It happened [1]"}`,
		`{"type":"STATUS","content":"ignored"}`,
		``,
		`{"type":"CITATION","sequenceIndex":1,"url":"https://a"}`,
		`{"type":"RESPONSE_CHUNK","content":" twice [2]."}`,
	}, "\n") + "\n"

	var acc Accumulator
	var updates int
	if err := Decode(strings.NewReader(stream), &acc, func(models.AnswerResult) { updates++ }); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	got := acc.Result()
	if got.Text != "Perigon Response: It happened [1] twice [2]." {
		t.Errorf("unexpected text %q", got.Text)
	}
	if len(got.Citations) != 2 || got.Citations[0].SequenceIndex != 2 || got.Citations[1].URL != "https://a" {
		t.Errorf("expected citations in arrival order, got %+v", got.Citations)
	}
	if updates != 5 {
		t.Errorf("expected 5 progress updates, got %d", updates)
	}
}

func TestDecodeTrailingFrame(t *testing.T) {
	var acc Accumulator
	stream := `{"type":"RESPONSE_CHUNK","content":"a"}` + "\n" + `{"type":"RESPONSE_CHUNK","content":"b"}`
	if err := Decode(strings.NewReader(stream), &acc, nil); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got := acc.Result().Text; got != "ab" {
		t.Errorf("expected complete trailing frame to be parsed, got %q", got)
	}

	acc = Accumulator{}
	stream = `{"type":"RESPONSE_CHUNK","content":"a"}` + "\n" + `{"type":"RESPONSE_CH`
	if err := Decode(strings.NewReader(stream), &acc, nil); err != nil {
		t.Fatalf("expected truncated fragment to be discarded silently, got %v", err)
	}
	if got := acc.Result().Text; got != "a" {
		t.Errorf("unexpected text %q", got)
	}
	if acc.Skipped() != 1 {
		t.Errorf("expected one skipped frame, got %d", acc.Skipped())
	}
}

type failingReader struct {
	data string
	read bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		return copy(p, f.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestDecodeTransportError(t *testing.T) {
	var acc Accumulator
	err := Decode(&failingReader{data: `{"type":"RESPONSE_CHUNK","content":"x"}` + "\n"}, &acc, nil)
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestResultIsSnapshot(t *testing.T) {
	var acc Accumulator
	acc.Apply([]byte(`{"type":"CITATION","sequenceIndex":1,"url":"https://a"}`))
	snap := acc.Result()
	acc.Apply([]byte(`{"type":"CITATION","sequenceIndex":2,"url":"https://b"}`))
	if len(snap.Citations) != 1 {
		t.Fatalf("expected earlier snapshot to be unaffected, got %+v", snap.Citations)
	}
}
