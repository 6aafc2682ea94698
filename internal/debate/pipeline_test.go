package debate

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/store"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/wav"
)

// fakeSynth returns a WAV buffer whose PCM payload is the text repeated to
// a deterministic per-text length.
type fakeSynth struct {
	calls    atomic.Int64
	failText string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.calls.Add(1)
	if text == f.failText {
		return nil, fmt.Errorf("synthesis backend unavailable")
	}
	pcm := bytes.Repeat([]byte(text), 10)
	return append(wav.BuildHeader(len(pcm)), pcm...), nil
}

type fakeObjects struct {
	data       map[string][]byte
	failStore  bool
	failFetch  bool
	storeCalls int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{data: map[string][]byte{}}
}

func (f *fakeObjects) Store(ctx context.Context, key string, data []byte, contentType string) error {
	f.storeCalls++
	if f.failStore {
		return fmt.Errorf("store unavailable")
	}
	f.data[key] = data
	return nil
}

func (f *fakeObjects) Fetch(ctx context.Context, key string) ([]byte, error) {
	if f.failFetch {
		return nil, fmt.Errorf("fetch unavailable")
	}
	data, ok := f.data[key]
	if !ok {
		return nil, fmt.Errorf("not found: %s", key)
	}
	return data, nil
}

func (f *fakeObjects) URL(key string) string {
	return "http://objects.local/audio/" + key
}

type fakeMeta struct {
	metas   map[string]*store.AudioMeta
	failSet bool
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{metas: map[string]*store.AudioMeta{}}
}

func (f *fakeMeta) AudioMeta(analysisID string) (*store.AudioMeta, error) {
	return f.metas[analysisID], nil
}

func (f *fakeMeta) SetAudioMeta(analysisID, url string, timings []contract.DebateTimingSegment, durationMs int) error {
	if f.failSet {
		return fmt.Errorf("metadata store unavailable")
	}
	f.metas[analysisID] = &store.AudioMeta{URL: url, Timings: timings, DurationMs: durationMs}
	return nil
}

func sampleTurns() []contract.DebateTurn {
	return []contract.DebateTurn{
		{Speaker: contract.SpeakerProtector, Message: "aaaa"},
		{Speaker: contract.SpeakerDefender, Message: "bbbbbbbb"},
		{Speaker: contract.SpeakerProtector, Message: "cc"},
	}
}

func TestGenerate(t *testing.T) {
	synth := &fakeSynth{}
	objects := newFakeObjects()
	meta := newFakeMeta()
	p := NewPipeline(synth, objects, meta)

	result, err := p.Generate(context.Background(), "analysis-1", sampleTurns())
	require.NoError(t, err)

	// One synthesis call per turn.
	assert.Equal(t, int64(3), synth.calls.Load())

	// Timing segments are contiguous, ordered by turn, and close at the
	// track duration. Boundaries tolerate 1ms of independent rounding.
	require.Len(t, result.Timings, 3)
	assert.Equal(t, 0, result.Timings[0].StartMs)
	for i, seg := range result.Timings {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, sampleTurns()[i].Speaker, seg.Speaker)
		if i > 0 {
			assert.InDelta(t, result.Timings[i-1].EndMs, seg.StartMs, 1)
		}
	}
	assert.InDelta(t, result.DurationMs, result.Timings[2].EndMs, 1)

	// Final WAV: rebuilt header plus PCM in original turn order.
	pcmWant := append(bytes.Repeat([]byte("aaaa"), 10), bytes.Repeat([]byte("bbbbbbbb"), 10)...)
	pcmWant = append(pcmWant, bytes.Repeat([]byte("cc"), 10)...)
	require.Equal(t, append(wav.BuildHeader(len(pcmWant)), pcmWant...), result.WAVBytes)
	assert.Equal(t, wav.BytesToMs(len(pcmWant)), result.DurationMs)

	assert.True(t, len(result.AudioBase64) > len("data:audio/wav;base64,"))
	assert.Contains(t, result.AudioBase64, "data:audio/wav;base64,")

	// Cached in the object store and metadata store.
	assert.Equal(t, result.WAVBytes, objects.data[AudioKey("analysis-1")])
	require.NotNil(t, meta.metas["analysis-1"])
	assert.Equal(t, result.AudioURL, meta.metas["analysis-1"].URL)
	assert.Equal(t, "http://objects.local/audio/debate_audio/analysis-1.wav", result.AudioURL)
}

func TestGenerate_SingleTurnFailureFailsBatch(t *testing.T) {
	synth := &fakeSynth{failText: "bbbbbbbb"}
	objects := newFakeObjects()
	meta := newFakeMeta()
	p := NewPipeline(synth, objects, meta)

	_, err := p.Generate(context.Background(), "analysis-2", sampleTurns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesis failed for turn 1")

	// No partial track is ever cached.
	assert.Empty(t, objects.data)
	assert.Nil(t, meta.metas["analysis-2"])
}

func TestGenerate_CacheHitSkipsSynthesis(t *testing.T) {
	synth := &fakeSynth{}
	objects := newFakeObjects()
	meta := newFakeMeta()
	p := NewPipeline(synth, objects, meta)

	first, err := p.Generate(context.Background(), "analysis-3", sampleTurns())
	require.NoError(t, err)
	callsAfterFirst := synth.calls.Load()

	second, err := p.Generate(context.Background(), "analysis-3", sampleTurns())
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, synth.calls.Load(), "cache hit must not synthesize")
	assert.Equal(t, first.DurationMs, second.DurationMs)
	assert.Equal(t, first.Timings, second.Timings)
	assert.Equal(t, first.WAVBytes, second.WAVBytes)
	assert.Equal(t, first.AudioURL, second.AudioURL)
}

func TestGenerate_FetchFailureAfterMetadataHitRegenerates(t *testing.T) {
	synth := &fakeSynth{}
	objects := newFakeObjects()
	meta := newFakeMeta()
	meta.metas["analysis-4"] = &store.AudioMeta{URL: "http://stale", DurationMs: 99}
	objects.failFetch = true

	p := NewPipeline(synth, objects, meta)
	result, err := p.Generate(context.Background(), "analysis-4", sampleTurns())
	require.NoError(t, err)

	assert.Equal(t, int64(3), synth.calls.Load())
	assert.NotEqual(t, 99, result.DurationMs)
}

func TestGenerate_StoreFailureIsNonFatal(t *testing.T) {
	synth := &fakeSynth{}
	objects := newFakeObjects()
	objects.failStore = true
	meta := newFakeMeta()

	p := NewPipeline(synth, objects, meta)
	result, err := p.Generate(context.Background(), "analysis-5", sampleTurns())
	require.NoError(t, err)

	assert.NotEmpty(t, result.WAVBytes)
	assert.Empty(t, result.AudioURL, "no URL without a stored object")
	assert.Nil(t, meta.metas["analysis-5"], "metadata follows the object write")
}

func TestGenerate_MetadataWriteFailureIsNonFatal(t *testing.T) {
	synth := &fakeSynth{}
	objects := newFakeObjects()
	meta := newFakeMeta()
	meta.failSet = true

	p := NewPipeline(synth, objects, meta)
	result, err := p.Generate(context.Background(), "analysis-6", sampleTurns())
	require.NoError(t, err)
	assert.NotEmpty(t, result.AudioURL)
	assert.NotEmpty(t, result.WAVBytes)
}

func TestAudioKey(t *testing.T) {
	assert.Equal(t, "debate_audio/abc.wav", AudioKey("abc"))
}
