package tui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
)

func newReporter() (*StatusReporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewStatusReporter(&out, &errOut), &out, &errOut
}

func TestStatusReporter_StepFinished(t *testing.T) {
	t.Parallel()

	r, out, errOut := newReporter()

	r.StepFinished(provision.StepResult{Name: "layout:tree", Outcome: provision.OutcomeApplied, Detail: "created 9 directories under /home/ada/dev"})
	r.StepFinished(provision.StepResult{Name: "apt:package:git", Outcome: provision.OutcomeSkipped, Detail: "already in place"})
	r.StepFinished(provision.StepResult{Name: "git:identity", Outcome: provision.OutcomeDeferred, Detail: "name and email not supplied"})
	r.StepFinished(provision.StepResult{Name: "shell:profile", Outcome: provision.OutcomePlanned})

	assert.Contains(t, out.String(), "✓ layout:tree created 9 directories under /home/ada/dev\n")
	assert.Contains(t, out.String(), "• apt:package:git already in place\n")
	assert.Contains(t, out.String(), "… git:identity deferred: name and email not supplied\n")
	assert.Contains(t, out.String(), "• shell:profile would apply\n")
	assert.Empty(t, errOut.String())
}

func TestStatusReporter_FailureGoesToErrOut(t *testing.T) {
	t.Parallel()

	r, out, errOut := newReporter()
	cause := errors.New("E: Unable to locate package nope")

	r.StepFinished(provision.StepResult{
		Name:    "apt:package:nope",
		Outcome: provision.OutcomeFailed,
		Err:     provision.NewApplyFailedError("apt:package:nope", cause),
	})

	assert.Empty(t, out.String())
	assert.Equal(t, "✗ apt:package:nope E: Unable to locate package nope\n", errOut.String())
}

func TestStatusReporter_RunFinished(t *testing.T) {
	t.Parallel()

	t.Run("succeeded", func(t *testing.T) {
		t.Parallel()

		r, out, _ := newReporter()
		r.RunFinished(&provision.Report{
			State: provision.StateSucceeded,
			Results: []provision.StepResult{
				{Name: "a", Outcome: provision.OutcomeApplied},
				{Name: "b", Outcome: provision.OutcomeSkipped},
				{Name: "c", Outcome: provision.OutcomeSkipped},
				{Name: "d", Outcome: provision.OutcomeDeferred},
			},
			Duration: 1234 * time.Millisecond,
		})
		assert.Contains(t, out.String(), "Done: 1 applied, 2 skipped, 1 deferred in 1.23s")
	})

	t.Run("aborted", func(t *testing.T) {
		t.Parallel()

		r, out, errOut := newReporter()
		r.RunFinished(&provision.Report{State: provision.StateAborted, FailedStep: "apt:upgrade"})
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "Aborted at apt:upgrade")
	})

	t.Run("nil report", func(t *testing.T) {
		t.Parallel()

		r, out, errOut := newReporter()
		r.RunFinished(nil)
		assert.Empty(t, out.String())
		assert.Empty(t, errOut.String())
	})
}

func TestStatusReporter_Verbose(t *testing.T) {
	t.Parallel()

	r, out, _ := newReporter()
	r.StepStarted("quiet")
	assert.Empty(t, out.String())

	r.WithVerbose(true).StepStarted("loud")
	assert.Equal(t, "› loud\n", out.String())
}

func TestStatusReporter_PublicKeyAndFailure(t *testing.T) {
	t.Parallel()

	r, out, errOut := newReporter()
	r.PublicKey("github.com", "/home/ada/.ssh/id_ed25519.pub", "ssh-ed25519 AAAAC3Nza ada@example.com")
	r.Failure("unsupported operating system family \"fedora\"")

	assert.Contains(t, out.String(), "Add this public key (/home/ada/.ssh/id_ed25519.pub) to github.com:")
	assert.Contains(t, out.String(), "ssh-ed25519 AAAAC3Nza ada@example.com")
	assert.Equal(t, "✗ Error: unsupported operating system family \"fedora\"\n", errOut.String())
}
