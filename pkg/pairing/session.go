// Package pairing implements the HoloPair commit/reveal pairing protocol.
//
// Two sessions, an Initiator and a Responder, each run the state machine
// independently and talk only through protocol messages:
//
//	Initiator (A)                         Responder (B)
//	parameters, publicKeyA   ────────▶
//	                         ◀────────    publicKeyB
//	commitHash = H(K)        ────────▶
//	                  (humans: B waves, A clicks)
//	encryptedSecret = E(pkB, K) ─────▶    check H(K) == commitHash
//	        both derive the artifact from pkA‖pkB‖K
//	                  (humans: B gestures, A compares and clicks)
//	finalAuthTag = H(pkA‖pkB‖K) ─────▶    check tag
//
// A man in the middle has to pick its keys before K is revealed, so it
// cannot steer the artifact; the humans comparing it catch the substitution.
//
// Each step is guarded by a condition (a mailbox field arriving or a human
// confirmation). Evaluate fires guards until none can make progress, so it
// is safe to call at any time. Every transition runs under the session
// mutex; Renderer, StepLogger, OnPrompt and the Sender are called with the
// mutex held and must not call back into the session.
package pairing

import (
	"crypto/subtle"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/backkem/holopair/pkg/crypto"
	"github.com/backkem/holopair/pkg/verification"
	"github.com/backkem/holopair/pkg/wire"
	"github.com/pion/logging"
)

// DefaultElementSizes are the artifact sizes an Initiator picks from.
var DefaultElementSizes = []int{4, 6, 8}

// DefaultAttackProbability is the share of attempts, in percent, run as an
// attack simulation when enabled by configuration.
const DefaultAttackProbability = 20

// Config configures a Session.
type Config struct {
	// Role is the participant role. Required.
	Role Role

	// Provider supplies hashing, randomness and encryption. Required.
	Provider crypto.Provider

	// Channel carries outbound messages. Required.
	Channel Sender

	// Scheme is the artifact variant (Initiator only; the Responder learns
	// it from the parameters).
	Scheme verification.Scheme

	// ElementSizes are the artifact sizes to choose from (Initiator only).
	// Default: DefaultElementSizes
	ElementSizes []int

	// AttackProbability is the chance, in percent, that the Initiator marks
	// an attempt as an attack simulation. Zero disables simulation.
	AttackProbability int

	// Renderer displays the artifact. Optional.
	Renderer Renderer

	// StepLogger records progress. Optional.
	StepLogger StepLogger

	// OnPrompt is called whenever the user instruction changes. Optional.
	OnPrompt func(Prompt)

	// Rand drives parameter selection. If nil, a randomly seeded source is used.
	Rand *rand.Rand

	// Now returns the current time for step logging. Default: time.Now
	Now func() time.Time

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

func validateOptions(scheme verification.Scheme, sizes []int, attackProbability int) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: no element sizes", ErrInvalidConfig)
	}
	for _, n := range sizes {
		if err := scheme.CheckElements(n); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if attackProbability < 0 || attackProbability > 100 {
		return fmt.Errorf("%w: attack probability %d not a percentage", ErrInvalidConfig, attackProbability)
	}
	return nil
}

// Session is one side of the pairing protocol.
type Session struct {
	mu sync.Mutex

	role     Role
	provider crypto.Provider
	channel  Sender
	renderer Renderer
	steps    StepLogger
	onPrompt func(Prompt)
	rng      *rand.Rand
	now      func() time.Time
	log      logging.LeveledLogger

	// Applied when the Initiator starts the next attempt.
	scheme            verification.Scheme
	elementSizes      []int
	attackProbability int

	// Kept across attempts.
	lastEpoch   uint32
	attempts    int
	aborts      int
	lastOutcome Outcome
	lastCause   error

	// Cleared by reset.
	epoch        uint32
	step         Step
	outcome      Outcome
	mail         mailbox
	params       *Parameters
	keyPair      *crypto.KeyPair
	publicKey    []byte
	secretK      []byte
	myCommit     []byte
	sharedKey    []byte
	linkKey      []byte
	artifact     *verification.Artifact
	outOfBandAck bool
	finalAck     bool
	prompt       Prompt
}

// NewSession creates a session in its initial state.
func NewSession(config Config) (*Session, error) {
	if config.Role != RoleInitiator && config.Role != RoleResponder {
		return nil, fmt.Errorf("%w: unknown role %d", ErrInvalidConfig, int(config.Role))
	}
	if config.Provider == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrInvalidConfig)
	}
	if config.Channel == nil {
		return nil, fmt.Errorf("%w: nil channel", ErrInvalidConfig)
	}
	if _, err := verification.NewGenerator(config.Scheme, config.Provider); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	sizes := config.ElementSizes
	if len(sizes) == 0 {
		sizes = DefaultElementSizes
	}
	if err := validateOptions(config.Scheme, sizes, config.AttackProbability); err != nil {
		return nil, err
	}

	s := &Session{
		role:              config.Role,
		provider:          config.Provider,
		channel:           config.Channel,
		renderer:          config.Renderer,
		steps:             config.StepLogger,
		onPrompt:          config.OnPrompt,
		rng:               config.Rand,
		now:               config.Now,
		scheme:            config.Scheme,
		elementSizes:      slices.Clone(sizes),
		attackProbability: config.AttackProbability,
		prompt:            PromptWaiting,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("pairing")
	}

	return s, nil
}

// Role returns the session role.
func (s *Session) Role() Role {
	return s.role
}

// Step returns the next step to execute.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Outcome returns the outcome of the current attempt.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// LastOutcome returns the outcome of the most recently finished attempt.
// An abort resets the session immediately, so this is where it shows.
func (s *Session) LastOutcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

// LastError returns why the most recently finished attempt aborted, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCause
}

// Attempts returns the number of attempts started.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Epoch returns the current attempt epoch, or 0 between attempts.
func (s *Session) Epoch() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Parameters returns the current attempt parameters, once known.
func (s *Session) Parameters() (Parameters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.params == nil {
		return Parameters{}, false
	}
	return *s.params, true
}

// Scheme returns the scheme the Initiator uses for its next attempt.
func (s *Session) Scheme() verification.Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme
}

// Artifact returns the derived artifact, or nil before it exists.
func (s *Session) Artifact() *verification.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// Prompt returns the current user instruction.
func (s *Session) Prompt() Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// SharedKey returns a copy of the agreed secret, or nil before it exists.
func (s *Session) SharedKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sharedKey)
}

// LinkKey returns the key derived from a successful pairing, or nil.
func (s *Session) LinkKey() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.linkKey)
}

func (s *Session) abortCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborts
}

// SetOptions changes the element sizes and attack probability used from the
// next attempt on.
func (s *Session) SetOptions(elementSizes []int, attackProbability int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := validateOptions(s.scheme, elementSizes, attackProbability); err != nil {
		return err
	}
	s.elementSizes = slices.Clone(elementSizes)
	s.attackProbability = attackProbability
	return nil
}

// accepts reports whether the role ever receives field f.
func (s *Session) accepts(f wire.Field) bool {
	switch f {
	case wire.FieldAbort, wire.FieldRestart:
		return true
	case wire.FieldPublicKeyB:
		return s.role == RoleInitiator
	default:
		return s.role == RoleResponder && f.Valid()
	}
}

// Deliver hands an inbound message to the session and evaluates guards.
//
// Messages from another attempt epoch are dropped. A Responder adopts the
// epoch of a parameters message, resetting first if it was in a different
// attempt. Duplicate fields are ignored. The returned error is non-nil only
// when the delivery made the current attempt abort.
func (s *Session) Deliver(m wire.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.accepts(m.Field) {
		if s.log != nil {
			s.log.Debugf("%s ignoring %s", s.role, &m)
		}
		return nil
	}

	if s.role == RoleResponder && m.Field == wire.FieldParameters && m.Epoch != 0 && m.Epoch != s.epoch {
		if s.epoch != 0 {
			if s.log != nil {
				s.log.Infof("peer started attempt %d, leaving attempt %d", m.Epoch, s.epoch)
			}
			s.resetLocked()
		}
		s.epoch = m.Epoch
		s.attempts++
	}

	if s.epoch == 0 || m.Epoch != s.epoch {
		if s.log != nil {
			s.log.Debugf("%s dropping %s (current epoch %d)", s.role, &m, s.epoch)
		}
		return nil
	}

	switch m.Field {
	case wire.FieldAbort:
		if s.log != nil {
			s.log.Warnf("%s: peer aborted attempt %d at step %s", s.role, s.epoch, s.step)
		}
		s.aborts++
		s.finishLocked(OutcomeAborted, ErrPeerAbort)
		s.sendSignalLocked(wire.FieldRestart)
		s.resetLocked()
		s.setPromptLocked(PromptFailed)
	case wire.FieldRestart:
		if s.log != nil {
			s.log.Infof("%s: peer restarted attempt %d", s.role, s.epoch)
		}
		s.resetLocked()
		s.setPromptLocked(PromptWaiting)
	default:
		if !s.mail.store(&m) && s.log != nil {
			s.log.Debugf("%s: %s already received, ignoring", s.role, m.Field)
		}
	}

	return s.evaluateLocked()
}

// Evaluate fires guards until none can make progress. A guard error aborts
// the attempt and is returned wrapped in ErrPairingFailed.
func (s *Session) Evaluate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked()
}

// ConfirmOutOfBandAck records that the Initiator saw the Responder wave.
func (s *Session) ConfirmOutOfBandAck() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleInitiator || s.step != StepAwaitOutOfBandAck || s.outOfBandAck {
		return fmt.Errorf("%w: out-of-band ack at step %s", ErrUnexpectedConfirmation, s.step)
	}
	s.outOfBandAck = true
	return s.evaluateLocked()
}

// ConfirmFinalMatch records that the Initiator saw the gestures match.
func (s *Session) ConfirmFinalMatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleInitiator || s.step != StepAwaitFinalMatch || s.finalAck {
		return fmt.Errorf("%w: final match at step %s", ErrUnexpectedConfirmation, s.step)
	}
	s.finalAck = true
	return s.evaluateLocked()
}

// Abort fails the current attempt, tells the peer and starts over.
// Aborting between attempts only resets.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch == 0 {
		s.resetLocked()
		return nil
	}
	s.failLocked(ErrUserAbort)
	return s.evaluateLocked()
}

// Restart abandons the current attempt without failure, tells the peer and
// starts over.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restartLocked()
	return s.evaluateLocked()
}

// SwitchScheme toggles the Initiator's artifact scheme and restarts. It fails
// with ErrInvalidConfig, leaving the scheme unchanged, when an element size
// exceeds the other scheme's limit.
func (s *Session) SwitchScheme() (verification.Scheme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.role != RoleInitiator {
		return s.scheme, ErrNotInitiator
	}
	next := verification.SchemeColoring
	if s.scheme == verification.SchemeColoring {
		next = verification.SchemePositional
	}
	if err := validateOptions(next, s.elementSizes, s.attackProbability); err != nil {
		return s.scheme, err
	}
	s.scheme = next
	if s.log != nil {
		s.log.Infof("confirmation method changed to %s", s.scheme)
	}
	s.restartLocked()
	s.setPromptLocked(PromptSchemeChanged)
	return s.scheme, s.evaluateLocked()
}

// Reset clears all attempt state without notifying the peer.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.setPromptLocked(PromptWaiting)
}

// fail aborts the current attempt with cause, if one is in progress.
func (s *Session) fail(cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == 0 || s.outcome != OutcomePending {
		return nil
	}
	return s.failLocked(cause)
}

func (s *Session) restartLocked() {
	if s.log != nil && s.epoch != 0 {
		s.log.Infof("%s restarting attempt %d", s.role, s.epoch)
	}
	s.sendSignalLocked(wire.FieldRestart)
	s.resetLocked()
	s.setPromptLocked(PromptWaiting)
}

func (s *Session) evaluateLocked() error {
	for {
		var fired bool
		var err error
		if s.role == RoleInitiator {
			fired, err = s.stepInitiatorLocked()
		} else {
			fired, err = s.stepResponderLocked()
		}
		if err != nil {
			return s.failLocked(err)
		}
		if !fired {
			return nil
		}
	}
}

func (s *Session) stepInitiatorLocked() (bool, error) {
	switch s.step {
	case StepStart:
		if !s.channel.Connected() {
			return false, nil
		}
		params := Parameters{
			Elements: s.elementSizes[s.rng.IntN(len(s.elementSizes))],
			Scheme:   s.scheme,
			Attack:   s.sampleAttackLocked(),
		}
		s.lastEpoch++
		if s.lastEpoch == 0 {
			s.lastEpoch = 1
		}
		s.epoch = s.lastEpoch
		s.attempts++
		s.params = &params
		if s.log != nil {
			s.log.Infof("starting attempt %d: %d elements, %s, attack=%t",
				s.epoch, params.Elements, params.Scheme, params.Attack)
		}
		if err := s.sendLocked(wire.Message{Field: wire.FieldParameters, Params: &params}); err != nil {
			return false, err
		}
		if s.steps != nil {
			s.steps.LogParameters(params)
		}
		s.advanceLocked(StepSendPublicKey)
		return true, nil

	case StepSendPublicKey:
		kp, err := s.provider.GenerateKeyPair()
		if err != nil {
			return false, fmt.Errorf("generate key pair: %w", err)
		}
		s.keyPair = kp
		s.publicKey = kp.PublicKey()
		s.mail.publicKeyA.TrySet(slices.Clone(s.publicKey))
		if err := s.sendLocked(wire.Message{Field: wire.FieldPublicKeyA, Value: s.publicKey}); err != nil {
			return false, err
		}
		s.advanceLocked(StepAwaitPublicKeyB)
		return true, nil

	case StepAwaitPublicKeyB:
		if !s.mail.has(wire.FieldPublicKeyB) {
			return false, nil
		}
		k, err := s.provider.GenerateNonce()
		if err != nil {
			return false, fmt.Errorf("generate secret: %w", err)
		}
		s.secretK = k
		s.myCommit = s.provider.Hash(k)
		if err := s.sendLocked(wire.Message{Field: wire.FieldCommitHash, Value: s.myCommit}); err != nil {
			return false, err
		}
		s.setPromptLocked(PromptClickOnWave)
		s.advanceLocked(StepAwaitOutOfBandAck)
		return true, nil

	case StepAwaitOutOfBandAck:
		if !s.outOfBandAck {
			return false, nil
		}
		pubB, _ := s.mail.get(wire.FieldPublicKeyB)
		sealed, err := s.provider.Encrypt(pubB, s.secretK)
		if err != nil {
			return false, fmt.Errorf("seal secret: %w", err)
		}
		s.sharedKey = slices.Concat(s.publicKey, pubB, s.secretK)
		if err := s.generateLocked(); err != nil {
			return false, err
		}
		if err := s.sendLocked(wire.Message{Field: wire.FieldEncryptedSecret, Value: sealed}); err != nil {
			return false, err
		}
		s.showLocked()
		s.setPromptLocked(PromptConfirmGestures)
		s.advanceLocked(StepAwaitFinalMatch)
		return true, nil

	case StepAwaitFinalMatch:
		if !s.finalAck {
			return false, nil
		}
		tag := s.provider.Hash(s.sharedKey)
		if err := s.sendLocked(wire.Message{Field: wire.FieldFinalAuthTag, Value: tag}); err != nil {
			return false, err
		}
		return true, s.succeedLocked()
	}
	return false, nil
}

func (s *Session) stepResponderLocked() (bool, error) {
	switch s.step {
	case StepStart:
		s.advanceLocked(StepAwaitPublicKeyA)
		return true, nil

	case StepAwaitPublicKeyA:
		params, ok := s.mail.parameters.Get()
		if !ok || !s.mail.has(wire.FieldPublicKeyA) {
			return false, nil
		}
		if err := params.Validate(); err != nil {
			return false, err
		}
		s.params = &params
		if s.steps != nil {
			s.steps.LogParameters(params)
		}
		kp, err := s.provider.GenerateKeyPair()
		if err != nil {
			return false, fmt.Errorf("generate key pair: %w", err)
		}
		s.keyPair = kp
		s.publicKey = kp.PublicKey()
		s.mail.publicKeyB.TrySet(slices.Clone(s.publicKey))
		if err := s.sendLocked(wire.Message{Field: wire.FieldPublicKeyB, Value: s.publicKey}); err != nil {
			return false, err
		}
		s.advanceLocked(StepAwaitCommit)
		return true, nil

	case StepAwaitCommit:
		commit, ok := s.mail.get(wire.FieldCommitHash)
		if !ok {
			return false, nil
		}
		s.myCommit = commit
		s.setPromptLocked(PromptWave)
		s.advanceLocked(StepAwaitEncryptedSecret)
		return true, nil

	case StepAwaitEncryptedSecret:
		sealed, ok := s.mail.get(wire.FieldEncryptedSecret)
		if !ok {
			return false, nil
		}
		k, err := s.provider.Decrypt(s.keyPair, sealed)
		if err != nil {
			return false, fmt.Errorf("open secret: %w", err)
		}
		if subtle.ConstantTimeCompare(s.provider.Hash(k), s.myCommit) != 1 {
			clear(k)
			return false, fmt.Errorf("%w: secret does not match commitment", ErrCommitmentMismatch)
		}
		s.secretK = k

		pubA, _ := s.mail.get(wire.FieldPublicKeyA)
		if s.params.Attack {
			// Simulated man in the middle: B ends up with a different key.
			s.sharedKey = slices.Concat(s.publicKey, k, pubA)
		} else {
			s.sharedKey = slices.Concat(pubA, s.publicKey, k)
		}
		if err := s.generateLocked(); err != nil {
			return false, err
		}
		s.showLocked()
		if s.params.Scheme == verification.SchemePositional {
			s.setPromptLocked(PromptFollowPath)
		} else {
			s.setPromptLocked(PromptPointToCubes)
		}
		s.advanceLocked(StepAwaitFinalTag)
		return true, nil

	case StepAwaitFinalTag:
		tag, ok := s.mail.get(wire.FieldFinalAuthTag)
		if !ok {
			return false, nil
		}
		if !s.params.Attack && subtle.ConstantTimeCompare(s.provider.Hash(s.sharedKey), tag) != 1 {
			return false, fmt.Errorf("%w: final tag", ErrCommitmentMismatch)
		}
		return true, s.succeedLocked()
	}
	return false, nil
}

func (s *Session) sampleAttackLocked() bool {
	if s.attackProbability <= 0 {
		return false
	}
	return s.rng.IntN(99)+1 <= s.attackProbability
}

func (s *Session) generateLocked() error {
	g, err := verification.NewGenerator(s.params.Scheme, s.provider)
	if err != nil {
		return err
	}
	a, err := g.Generate(s.sharedKey, s.params.Elements)
	if err != nil {
		return err
	}
	s.artifact = a
	return nil
}

func (s *Session) showLocked() {
	if s.renderer != nil {
		s.renderer.Show(s.artifact, s.role.Perspective())
	}
}

func (s *Session) succeedLocked() error {
	linkKey, err := crypto.DeriveLinkKey(s.sharedKey)
	if err != nil {
		return err
	}
	s.linkKey = linkKey
	s.step = StepTerminal
	s.finishLocked(OutcomeSucceeded, nil)
	s.setPromptLocked(PromptSucceeded)
	if s.log != nil {
		peer := wire.FieldPublicKeyB
		if s.role == RoleResponder {
			peer = wire.FieldPublicKeyA
		}
		pub, _ := s.mail.get(peer)
		s.log.Infof("%s paired in attempt %d with peer %s", s.role, s.epoch, crypto.Fingerprint(pub))
	}
	return nil
}

// failLocked aborts the current attempt and resets. It returns cause
// wrapped in ErrPairingFailed.
func (s *Session) failLocked(cause error) error {
	s.aborts++
	if s.log != nil {
		s.log.Warnf("%s attempt %d aborted at step %s", s.role, s.epoch, s.step)
		s.log.Debugf("abort cause: %v", cause)
	}
	s.finishLocked(OutcomeAborted, cause)
	s.sendSignalLocked(wire.FieldAbort)
	s.resetLocked()
	s.setPromptLocked(PromptFailed)
	return fmt.Errorf("%w: %w", ErrPairingFailed, cause)
}

func (s *Session) finishLocked(outcome Outcome, cause error) {
	s.outcome = outcome
	s.lastOutcome = outcome
	s.lastCause = cause
	if s.steps != nil {
		s.steps.LogOutcome(outcome, s.now())
	}
}

// resetLocked clears all attempt state and wipes secrets.
func (s *Session) resetLocked() {
	if s.keyPair != nil {
		s.keyPair.Wipe()
	}
	clear(s.secretK)
	clear(s.sharedKey)
	clear(s.linkKey)

	s.epoch = 0
	s.step = StepStart
	s.outcome = OutcomePending
	s.mail.reset()
	s.params = nil
	s.keyPair = nil
	s.publicKey = nil
	s.secretK = nil
	s.myCommit = nil
	s.sharedKey = nil
	s.linkKey = nil
	s.artifact = nil
	s.outOfBandAck = false
	s.finalAck = false

	if s.renderer != nil {
		s.renderer.Clear()
	}
}

func (s *Session) advanceLocked(step Step) {
	if s.log != nil {
		s.log.Debugf("%s attempt %d: %s -> %s", s.role, s.epoch, s.step, step)
	}
	s.step = step
	if s.steps != nil {
		s.steps.LogStep(step, s.now())
	}
}

func (s *Session) setPromptLocked(p Prompt) {
	if p == s.prompt {
		return
	}
	s.prompt = p
	if s.onPrompt != nil {
		s.onPrompt(p)
	}
}

func (s *Session) sendLocked(m wire.Message) error {
	m.Epoch = s.epoch
	if err := s.channel.Send(m); err != nil {
		return fmt.Errorf("send %s: %w", m.Field, err)
	}
	return nil
}

// sendSignalLocked best-effort notifies the peer about an abort or restart.
func (s *Session) sendSignalLocked(f wire.Field) {
	if s.epoch == 0 || !s.channel.Connected() {
		return
	}
	if err := s.sendLocked(wire.Message{Field: f}); err != nil && s.log != nil {
		s.log.Debugf("could not send %s: %v", f, err)
	}
}
