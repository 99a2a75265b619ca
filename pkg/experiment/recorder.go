// Package experiment records pairing attempts for user studies.
//
// A Recorder is attached to the Initiator session as its StepLogger. Every
// finished attempt appends one CSV row:
//
//	idA,idB,overall,forUser,switched,attack,colors,n,t1,t3,t5,t7,tEnd,SUCCESS|ABORT
//
// Timestamps are Unix milliseconds; steps the attempt never reached are -1.
package experiment

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/backkem/holopair/pkg/pairing"
	"github.com/backkem/holopair/pkg/verification"
	"github.com/pion/logging"
)

// File naming.
const (
	FilePrefix     = "experiment_result_"
	FileTimeLayout = "06-01-02__03_04_05"
)

// Row labels.
const (
	LabelSuccess = "SUCCESS"
	LabelAbort   = "ABORT"
)

const (
	maxPlayerID = 9999
	unset       = -1
)

// stampSlots maps logged steps to their timestamp column.
var stampSlots = map[pairing.Step]int{
	pairing.StepSendPublicKey:     0,
	pairing.StepAwaitPublicKeyB:   1,
	pairing.StepAwaitOutOfBandAck: 2,
	pairing.StepAwaitFinalMatch:   3,
}

// Config configures a Recorder.
type Config struct {
	// Dir is where the results file is created. Default: current directory
	Dir string

	// Filename overrides the generated results file name.
	Filename string

	// Rand draws player IDs. If nil, a randomly seeded source is used.
	Rand *rand.Rand

	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Recorder implements pairing.StepLogger by appending CSV rows to a file.
type Recorder struct {
	mu   sync.Mutex
	path string
	log  logging.LeveledLogger

	idA, idB int
	overall  int
	forUser  int
	switched bool

	params pairing.Parameters
	stamps [5]int64 // t1, t3, t5, t7, tEnd
}

// NewRecorder creates a recorder with fresh random player IDs. The results
// file is created on the first finished attempt.
func NewRecorder(config Config) *Recorder {
	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	name := config.Filename
	if name == "" {
		name = FilePrefix + now().Format(FileTimeLayout) + ".csv"
	}

	r := &Recorder{
		path: filepath.Join(config.Dir, name),
		idA:  rng.IntN(maxPlayerID) + 1,
		idB:  rng.IntN(maxPlayerID) + 1,
	}
	r.clearStamps()
	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("experiment")
	}
	return r
}

// Path returns the results file path.
func (r *Recorder) Path() string {
	return r.path
}

// Players returns the current player IDs of the Initiator and Responder.
func (r *Recorder) Players() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idA, r.idB
}

// SwitchRoles records that the two users swapped devices.
func (r *Recorder) SwitchRoles() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idA, r.idB = r.idB, r.idA
	r.forUser = 0
	r.switched = !r.switched
	if r.log != nil {
		r.log.Infof("roles switched, initiator is now player %d", r.idA)
	}
}

// LogParameters implements pairing.StepLogger.
func (r *Recorder) LogParameters(p pairing.Parameters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = p
}

// LogStep implements pairing.StepLogger.
func (r *Recorder) LogStep(step pairing.Step, at time.Time) {
	slot, ok := stampSlots[step]
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamps[slot] = at.UnixMilli()
}

// LogOutcome implements pairing.StepLogger. A write failure is logged and
// otherwise ignored.
func (r *Recorder) LogOutcome(outcome pairing.Outcome, at time.Time) {
	var label string
	switch outcome {
	case pairing.OutcomeSucceeded:
		label = LabelSuccess
	case pairing.OutcomeAborted:
		label = LabelAbort
	default:
		return
	}

	r.mu.Lock()
	r.overall++
	r.forUser++
	r.stamps[len(r.stamps)-1] = at.UnixMilli()
	row := r.rowLocked(label)
	r.clearStamps()
	r.mu.Unlock()

	if err := r.appendRow(row); err != nil && r.log != nil {
		r.log.Errorf("failed to record attempt: %v", err)
	}
}

func (r *Recorder) rowLocked(label string) []string {
	row := []string{
		strconv.Itoa(r.idA),
		strconv.Itoa(r.idB),
		strconv.Itoa(r.overall),
		strconv.Itoa(r.forUser),
		flag(r.switched),
		flag(r.params.Attack),
		flag(r.params.Scheme == verification.SchemeColoring),
		strconv.Itoa(r.params.Elements),
	}
	for _, ts := range r.stamps {
		row = append(row, strconv.FormatInt(ts, 10))
	}
	return append(row, label)
}

func (r *Recorder) clearStamps() {
	for i := range r.stamps {
		r.stamps[i] = unset
	}
}

func (r *Recorder) appendRow(row []string) (err error) {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results directory: %w", err)
		}
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close results file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
