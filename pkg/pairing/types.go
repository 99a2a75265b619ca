package pairing

import (
	"time"

	"github.com/backkem/holopair/pkg/verification"
	"github.com/backkem/holopair/pkg/wire"
)

// Role represents the pairing participant role.
type Role int

const (
	// RoleInitiator chooses the parameters and commits to the secret.
	RoleInitiator Role = iota
	// RoleResponder follows and checks the commitment.
	RoleResponder
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "Initiator"
	case RoleResponder:
		return "Responder"
	default:
		return "Unknown"
	}
}

// Perspective returns the artifact view for the role.
func (r Role) Perspective() verification.Perspective {
	if r == RoleResponder {
		return verification.PerspectiveResponder
	}
	return verification.PerspectiveInitiator
}

// Step is the next protocol step a session will execute. Even steps belong
// to the Responder, odd steps to the Initiator; step 0 is shared.
type Step int

const (
	StepStart                Step = iota // Both: begin an attempt
	StepSendPublicKey                    // Initiator: publish public key A
	StepAwaitPublicKeyA                  // Responder: wait for parameters and key A
	StepAwaitPublicKeyB                  // Initiator: wait for key B, then commit
	StepAwaitCommit                      // Responder: wait for the commitment
	StepAwaitOutOfBandAck                // Initiator: wait for the human wave ack
	StepAwaitEncryptedSecret             // Responder: wait for the sealed secret
	StepAwaitFinalMatch                  // Initiator: wait for the human gesture check
	StepAwaitFinalTag                    // Responder: wait for the final tag
	StepTerminal                         // Both: attempt finished
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepStart:
		return "Start"
	case StepSendPublicKey:
		return "SendPublicKey"
	case StepAwaitPublicKeyA:
		return "AwaitPublicKeyA"
	case StepAwaitPublicKeyB:
		return "AwaitPublicKeyB"
	case StepAwaitCommit:
		return "AwaitCommit"
	case StepAwaitOutOfBandAck:
		return "AwaitOutOfBandAck"
	case StepAwaitEncryptedSecret:
		return "AwaitEncryptedSecret"
	case StepAwaitFinalMatch:
		return "AwaitFinalMatch"
	case StepAwaitFinalTag:
		return "AwaitFinalTag"
	case StepTerminal:
		return "Terminal"
	default:
		return "Unknown"
	}
}

// Outcome is the result of an attempt.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeAborted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "Pending"
	case OutcomeSucceeded:
		return "Succeeded"
	case OutcomeAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Prompt is the instruction currently shown to the user.
type Prompt int

const (
	PromptNone Prompt = iota
	PromptWaiting
	PromptClickOnWave
	PromptConfirmGestures
	PromptWave
	PromptPointToCubes
	PromptFollowPath
	PromptSucceeded
	PromptFailed
	PromptSchemeChanged
)

// Text returns the instruction text.
func (p Prompt) Text() string {
	switch p {
	case PromptWaiting:
		return "Waiting for others..."
	case PromptClickOnWave:
		return "1. When other user waves, click on their cube."
	case PromptConfirmGestures:
		return "2. If gestures are correct, click on their cube.\nIf they make a mistake, say \"Abort\""
	case PromptWave:
		return "1. Wave to the other user!"
	case PromptPointToCubes:
		return "2. Point to the cubes in the right order."
	case PromptFollowPath:
		return "2. Follow the path with your finger."
	case PromptSucceeded:
		return "3. Pairing Successful!"
	case PromptFailed:
		return "3. Pairing Failed!"
	case PromptSchemeChanged:
		return "Confirmation Method Changed!"
	default:
		return ""
	}
}

// Parameters are the per-attempt settings broadcast by the Initiator.
type Parameters = wire.Parameters

// Sender is the outbound half of the message channel. Delivery must be
// ordered; the session relies on the channel for at-most-once delivery per
// field and attempt.
type Sender interface {
	Send(m wire.Message) error
	Connected() bool
}

// Renderer displays the verification artifact.
type Renderer interface {
	Show(a *verification.Artifact, p verification.Perspective)
	Clear()
}

// StepLogger records protocol progress, e.g. for experiments.
type StepLogger interface {
	LogParameters(p Parameters)
	LogStep(step Step, at time.Time)
	LogOutcome(outcome Outcome, at time.Time)
}
