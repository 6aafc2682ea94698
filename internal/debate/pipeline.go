// Package debate turns a scripted two-speaker debate transcript into a
// single timed WAV track: per-turn synthesis fan-out, PCM extraction and
// concatenation, cumulative timing computation, and object-store caching.
package debate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/store"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/tts"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/wav"
)

// ObjectStore is the byte cache for merged audio tracks.
type ObjectStore interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	URL(key string) string
}

// MetadataCache looks up and records per-analysis audio metadata.
// *store.Store implements it.
type MetadataCache interface {
	AudioMeta(analysisID string) (*store.AudioMeta, error)
	SetAudioMeta(analysisID, url string, timings []contract.DebateTimingSegment, durationMs int) error
}

// AudioKey derives the object-store key for an analysis's debate track.
func AudioKey(analysisID string) string {
	return "debate_audio/" + analysisID + ".wav"
}

type Pipeline struct {
	synth   tts.Synthesizer
	objects ObjectStore
	meta    MetadataCache
}

func NewPipeline(synth tts.Synthesizer, objects ObjectStore, meta MetadataCache) *Pipeline {
	return &Pipeline{synth: synth, objects: objects, meta: meta}
}

// Generate returns the merged debate track for an analysis, reusing a
// cached track when one exists. On a cache miss every turn is synthesized
// concurrently; any single failure fails the whole request, never a partial
// track. Cache writes afterwards are best-effort: a failed store or
// metadata write is logged and the freshly computed result is returned
// anyway.
func (p *Pipeline) Generate(ctx context.Context, analysisID string, turns []contract.DebateTurn) (*contract.DebateAudio, error) {
	if cached := p.fromCache(ctx, analysisID); cached != nil {
		return cached, nil
	}

	raw, err := p.synthesizeAll(ctx, turns)
	if err != nil {
		return nil, err
	}

	// Strip container headers, keep only raw PCM, in original turn order.
	pcm := make([][]byte, len(raw))
	for i, buf := range raw {
		pcm[i] = wav.ExtractPCM(buf)
	}

	// Per-turn timing from cumulative PCM byte offsets.
	timings := make([]contract.DebateTimingSegment, 0, len(pcm))
	cumulative := 0
	for i, segment := range pcm {
		startMs := wav.BytesToMs(cumulative)
		cumulative += len(segment)
		endMs := wav.BytesToMs(cumulative)
		timings = append(timings, contract.DebateTimingSegment{
			Index:   i,
			Speaker: turns[i].Speaker,
			StartMs: startMs,
			EndMs:   endMs,
		})
	}
	durationMs := wav.BytesToMs(cumulative)

	// Final WAV = new header + concatenated PCM.
	var wavBuf bytes.Buffer
	wavBuf.Grow(wav.HeaderSize + cumulative)
	wavBuf.Write(wav.BuildHeader(cumulative))
	for _, segment := range pcm {
		wavBuf.Write(segment)
	}
	wavBytes := wavBuf.Bytes()

	result := &contract.DebateAudio{
		AudioBase64: dataURL(wavBytes),
		WAVBytes:    wavBytes,
		Timings:     timings,
		DurationMs:  durationMs,
	}

	p.writeCache(ctx, analysisID, result)
	return result, nil
}

// synthesizeAll fans out one synthesis call per turn and joins on all of
// them. The first failure fails the batch; sibling results are discarded.
func (p *Pipeline) synthesizeAll(ctx context.Context, turns []contract.DebateTurn) ([][]byte, error) {
	raw := make([][]byte, len(turns))
	errs := make([]error, len(turns))
	var wg sync.WaitGroup

	for i, turn := range turns {
		wg.Add(1)
		go func(idx int, turn contract.DebateTurn) {
			defer wg.Done()
			raw[idx], errs[idx] = p.synth.Synthesize(ctx, turn.Message, tts.VoiceFor(turn.Speaker))
		}(i, turn)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("synthesis failed for turn %d: %w", i, err)
		}
	}
	return raw, nil
}

// fromCache reconstructs a previous result from stored metadata and bytes.
// Any failure after a metadata hit is treated as a miss so the track gets
// regenerated instead of failing the request.
func (p *Pipeline) fromCache(ctx context.Context, analysisID string) *contract.DebateAudio {
	meta, err := p.meta.AudioMeta(analysisID)
	if err != nil {
		log.Printf("audio cache lookup failed for %s: %v", analysisID, err)
		return nil
	}
	if meta == nil {
		return nil
	}

	wavBytes, err := p.objects.Fetch(ctx, AudioKey(analysisID))
	if err != nil {
		log.Printf("cached audio missing for %s, regenerating: %v", analysisID, err)
		return nil
	}

	return &contract.DebateAudio{
		AudioURL:    meta.URL,
		AudioBase64: dataURL(wavBytes),
		WAVBytes:    wavBytes,
		Timings:     meta.Timings,
		DurationMs:  meta.DurationMs,
	}
}

// writeCache persists the merged track and its metadata. Both writes are
// best-effort; the caller already holds the computed result.
func (p *Pipeline) writeCache(ctx context.Context, analysisID string, result *contract.DebateAudio) {
	key := AudioKey(analysisID)
	if err := p.objects.Store(ctx, key, result.WAVBytes, "audio/wav"); err != nil {
		log.Printf("failed to cache audio for %s: %v", analysisID, err)
		return
	}
	result.AudioURL = p.objects.URL(key)

	if err := p.meta.SetAudioMeta(analysisID, result.AudioURL, result.Timings, result.DurationMs); err != nil {
		log.Printf("failed to cache audio metadata for %s: %v", analysisID, err)
	}
}

func dataURL(wavBytes []byte) string {
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wavBytes)
}
