package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/mgoltzsche/dialogue-player/internal/audio"
	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/mgoltzsche/dialogue-player/internal/pubsub"
	"github.com/mgoltzsche/dialogue-player/internal/queue"
)

var (
	ErrQueueEmpty = errors.New("no dialogue loaded to play")
	ErrClosed     = errors.New("player closed")
)

// Speech fetches synthesized audio and owns the single active audio handle.
type Speech interface {
	Fetch(ctx context.Context, text string, voice model.VoiceID, language string) ([]byte, error)
	Start(waveData []byte) (audio.Handle, error)
	Current() audio.Handle
	Release()
}

type Config struct {
	Language         string
	VoiceA           model.VoiceID
	VoiceB           model.VoiceID
	ProgressInterval time.Duration
}

// Controller plays a dialogue queue entry by entry.
// Every transport command that supersedes the running advance loop bumps the
// generation, so results of a superseded loop are discarded.
type Controller struct {
	speech           Speech
	language         string
	progressInterval time.Duration
	events           *pubsub.PubSub[model.Status]
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup

	mutex          sync.Mutex
	dialogues      []model.DialogueTurn
	voiceA         model.VoiceID
	voiceB         model.VoiceID
	queue          []model.QueueEntry
	state          model.PlaybackState
	dialogueIndex  int
	queuePos       int
	generation     int64
	cancelLoop     context.CancelFunc
	cancelProgress context.CancelFunc
	handle         audio.Handle
	currentTime    time.Duration
	duration       time.Duration
	progress       float64
	err            error
	closed         bool
	// continueNext is set when the entry at queuePos was reached because
	// the previous one ended while paused.
	continueNext bool
}

func NewController(speech Speech, cfg Config) *Controller {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 100 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		speech:           speech,
		language:         cfg.Language,
		progressInterval: cfg.ProgressInterval,
		voiceA:           cfg.VoiceA,
		voiceB:           cfg.VoiceB,
		queue:            []model.QueueEntry{},
		events:           pubsub.New[model.Status](),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// SetDialogues stops playback and rebuilds the queue.
func (c *Controller) SetDialogues(turns []model.DialogueTurn) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopLocked()
	c.dialogues = append([]model.DialogueTurn{}, turns...)
	c.queue = queue.Build(c.dialogues, c.voiceA, c.voiceB)
	c.publishLocked()
}

// SetVoices stops playback and rebuilds the queue if a voice changed.
func (c *Controller) SetVoices(voiceA, voiceB model.VoiceID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if voiceA == c.voiceA && voiceB == c.voiceB {
		return
	}

	c.stopLocked()
	c.voiceA = voiceA
	c.voiceB = voiceB
	c.queue = queue.Build(c.dialogues, c.voiceA, c.voiceB)
	c.publishLocked()
}

func (c *Controller) Queue() []model.QueueEntry {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return append([]model.QueueEntry{}, c.queue...)
}

// Play starts playback at the current dialogue index or resumes paused audio.
func (c *Controller) Play() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrClosed
	}

	if len(c.queue) == 0 {
		c.err = ErrQueueEmpty
		slog.Warn(fmt.Sprintf("play: %s", c.err))
		c.publishLocked()

		return ErrQueueEmpty
	}

	switch c.state {
	case model.StatePlaying:
		return nil
	case model.StatePaused:
		if c.resumeLocked() {
			return nil
		}
	}

	pos := queue.FirstIndexOf(c.queue, c.dialogueIndex)
	if c.continueNext && c.queuePos < len(c.queue) {
		pos = c.queuePos
	}

	if pos < 0 {
		pos = 0
	}

	c.startLocked(pos)

	return nil
}

// resumeLocked continues the paused audio of the running advance loop.
func (c *Controller) resumeLocked() bool {
	h := c.handle
	if h == nil || c.cancelLoop == nil {
		return false
	}

	select {
	case <-h.Done():
		if h.Err() != nil {
			return false
		}
	default:
	}

	err := h.Play()
	if err != nil {
		slog.Debug(fmt.Sprintf("cannot resume paused audio, restarting dialogue %d: %s", c.dialogueIndex, err))
		return false
	}

	c.state = model.StatePlaying
	c.startProgressLocked(h)
	c.publishLocked()

	return true
}

// Pause pauses the active audio in place.
// Without attached audio (a request is in flight) the advance loop is
// cancelled and a later Play restarts the current dialogue.
func (c *Controller) Pause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.pauseLocked()
}

func (c *Controller) pauseLocked() {
	if c.state != model.StatePlaying {
		return
	}

	c.state = model.StatePaused
	c.stopProgressLocked()

	h := c.handle
	if h != nil && h.Playing() {
		h.Pause()
		c.publishLocked()

		return
	}

	if h != nil {
		select {
		case <-h.Done():
			// The audio ended before the advance loop took the lock.
			if err := h.Err(); err != nil {
				c.failLocked(fmt.Errorf("play dialogue %d: %w", c.dialogueIndex+1, err))
			} else {
				c.skipPausedLocked(c.queuePos)
			}

			return
		default:
		}
	}

	c.supersedeLocked()
	c.publishLocked()
}

// Stop releases the active audio and rewinds to the first dialogue.
func (c *Controller) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopLocked()
	c.publishLocked()
}

func (c *Controller) stopLocked() {
	if c.state == model.StateStopped {
		return
	}

	c.supersedeLocked()
	c.state = model.StateStopped
	c.dialogueIndex = 0
	c.queuePos = 0
	c.continueNext = false
	c.resetProgressLocked()
	c.err = nil
}

// Next jumps to the next dialogue and plays it.
func (c *Controller) Next() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i := c.dialogueIndex + 1; i < len(c.dialogues); i++ {
		if pos := queue.IndexOfTurn(c.queue, i); pos >= 0 {
			c.startLocked(pos)
			return
		}
	}
}

// Previous jumps to the previous dialogue and plays it.
func (c *Controller) Previous() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i := min(c.dialogueIndex, len(c.dialogues)) - 1; i >= 0; i-- {
		if pos := queue.IndexOfTurn(c.queue, i); pos >= 0 {
			c.startLocked(pos)
			return
		}
	}
}

// Seek moves the active audio to the given percentage of its duration.
func (c *Controller) Seek(percent float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	h := c.handle
	if h == nil {
		return
	}

	if math.IsNaN(percent) {
		return
	}

	percent = max(0, min(100, percent))
	h.Seek(time.Duration(percent / 100 * float64(h.Duration())))
	c.sampleLocked(h)
	c.publishLocked()
}

func (c *Controller) Status() model.Status {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.statusLocked()
}

// Subscribe streams status snapshots until the context is cancelled.
func (c *Controller) Subscribe(ctx context.Context) pubsub.Subscription[model.Status] {
	return c.events.Subscribe(ctx)
}

// Close stops playback and waits for the advance loop to terminate.
func (c *Controller) Close() {
	c.mutex.Lock()
	c.closed = true
	c.stopLocked()
	c.mutex.Unlock()

	c.cancel()
	c.wg.Wait()
	c.events.Stop()
}

func (c *Controller) startLocked(pos int) {
	if c.closed {
		return
	}

	c.supersedeLocked()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelLoop = cancel
	c.state = model.StatePlaying
	c.queuePos = pos
	c.dialogueIndex = c.queue[pos].DialogueIndex
	c.continueNext = false
	c.err = nil
	c.resetProgressLocked()

	gen := c.generation
	c.wg.Add(1)

	go c.advance(ctx, gen, pos)

	c.publishLocked()
}

// supersedeLocked invalidates the running advance loop and releases its audio.
func (c *Controller) supersedeLocked() {
	c.generation++

	if c.cancelLoop != nil {
		c.cancelLoop()
		c.cancelLoop = nil
	}

	c.stopProgressLocked()
	c.handle = nil
	c.speech.Release()
}

func (c *Controller) activeLocked(gen int64) bool {
	return c.generation == gen && c.state == model.StatePlaying
}

// advance walks the queue from pos, awaiting each entry's completion.
func (c *Controller) advance(ctx context.Context, gen int64, pos int) {
	defer c.wg.Done()

	for {
		entry, ok := c.prepareEntry(gen, pos)
		if !ok {
			return
		}

		waveData, err := c.speech.Fetch(ctx, entry.Text, entry.Voice, c.language)

		h, ok := c.attach(gen, entry, waveData, err)
		if !ok {
			return
		}

		select {
		case <-h.Done():
		case <-ctx.Done():
			return
		}

		if !c.completeEntry(gen, pos, h) {
			return
		}

		pos++
	}
}

func (c *Controller) prepareEntry(gen int64, pos int) (model.QueueEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.activeLocked(gen) {
		return model.QueueEntry{}, false
	}

	if pos >= len(c.queue) {
		slog.Debug("reached end of dialogue queue")
		c.finishLocked()

		return model.QueueEntry{}, false
	}

	entry := c.queue[pos]
	c.queuePos = pos
	c.dialogueIndex = entry.DialogueIndex
	c.handle = nil
	c.speech.Release()
	c.resetProgressLocked()
	c.publishLocked()

	return entry, true
}

func (c *Controller) attach(gen int64, entry model.QueueEntry, waveData []byte, fetchErr error) (audio.Handle, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.activeLocked(gen) {
		// superseded while the request was in flight
		return nil, false
	}

	if fetchErr != nil {
		c.failLocked(fmt.Errorf("synthesize dialogue %d speaker %s: %w", entry.DialogueIndex+1, entry.Speaker, fetchErr))
		return nil, false
	}

	h, err := c.speech.Start(waveData)
	if err != nil {
		c.failLocked(fmt.Errorf("play dialogue %d speaker %s: %w", entry.DialogueIndex+1, entry.Speaker, err))
		return nil, false
	}

	c.handle = h
	c.startProgressLocked(h)
	c.publishLocked()

	return h, true
}

func (c *Controller) completeEntry(gen int64, pos int, h audio.Handle) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.generation != gen {
		return false
	}

	c.stopProgressLocked()

	if err := h.Err(); err != nil {
		c.failLocked(fmt.Errorf("play dialogue %d: %w", c.dialogueIndex+1, err))
		return false
	}

	if c.state == model.StatePlaying {
		return true
	}

	c.skipPausedLocked(pos)

	return false
}

// skipPausedLocked ends the advance loop after the entry at pos ended while
// pausing. The next Play continues with the following entry.
func (c *Controller) skipPausedLocked(pos int) {
	next := pos + 1
	if next >= len(c.queue) {
		c.finishLocked()
		return
	}

	c.supersedeLocked()
	c.queuePos = next
	c.dialogueIndex = c.queue[next].DialogueIndex
	c.continueNext = true
	c.resetProgressLocked()
	c.publishLocked()
}

func (c *Controller) finishLocked() {
	c.supersedeLocked()
	c.state = model.StateStopped
	c.dialogueIndex = 0
	c.queuePos = 0
	c.continueNext = false
	c.resetProgressLocked()
	c.publishLocked()
}

func (c *Controller) failLocked(err error) {
	slog.Error(err.Error())

	c.supersedeLocked()
	c.state = model.StateStopped
	c.continueNext = false
	c.err = err
	c.resetProgressLocked()
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	c.events.Publish(c.statusLocked())
}

func (c *Controller) statusLocked() model.Status {
	s := model.Status{
		State:         c.state,
		DialogueIndex: c.dialogueIndex,
		DialogueCount: len(c.dialogues),
		QueueLength:   len(c.queue),
		CurrentTime:   c.currentTime,
		Duration:      c.duration,
		Progress:      c.progress,
	}

	if c.state != model.StateStopped && c.queuePos < len(c.queue) {
		entry := c.queue[c.queuePos]
		s.Speaker = entry.Speaker
		s.Text = entry.Text
	}

	if c.err != nil {
		s.Error = c.err.Error()
	}

	return s
}
