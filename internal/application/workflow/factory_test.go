package workflow

import (
	"testing"

	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

func TestBuildPermitMachine_HappyPath(t *testing.T) {
	m := BuildPermitMachine()

	path := []domainwf.Status{
		domainwf.StatusDraft,
		domainwf.StatusSubmitted,
		domainwf.StatusJEReviewPending,
		domainwf.StatusJEApproved,
		domainwf.StatusAEReviewPending,
		domainwf.StatusAEApproved,
		domainwf.StatusEE1ReviewPending,
		domainwf.StatusEE1Approved,
		domainwf.StatusCE1ReviewPending,
		domainwf.StatusCE1Approved,
		domainwf.StatusPaymentPending,
		domainwf.StatusPaymentCompleted,
		domainwf.StatusClerkPending,
		domainwf.StatusClerkProcessed,
		domainwf.StatusEE2SignPending,
		domainwf.StatusEE2SignCompleted,
		domainwf.StatusCE2FinalPending,
		domainwf.StatusCertificateIssued,
		domainwf.StatusCompleted,
	}

	current := path[0]
	for _, next := range path[1:] {
		got, err := m.Apply(current, next)
		if err != nil {
			t.Fatalf("Apply(%s, %s): %v", current, next, err)
		}
		current = got
	}

	if current != domainwf.StatusCompleted {
		t.Errorf("walked to %s, want %s", current, domainwf.StatusCompleted)
	}
}

func TestBuildPermitMachine_RejectionLoopsToSubmitted(t *testing.T) {
	m := BuildPermitMachine()

	rejections := []domainwf.Status{
		domainwf.StatusJERejected,
		domainwf.StatusAERejected,
		domainwf.StatusEE1Rejected,
		domainwf.StatusCE1Rejected,
	}

	for _, rejected := range rejections {
		t.Run(string(rejected), func(t *testing.T) {
			targets := m.Targets(rejected)
			if len(targets) != 1 {
				t.Fatalf("expected exactly one outgoing edge, got %v", targets)
			}
			if targets[0] != domainwf.StatusSubmitted {
				t.Errorf("rejection routes to %s, want %s", targets[0], domainwf.StatusSubmitted)
			}

			trigger, ok := m.TriggerFor(rejected, domainwf.StatusSubmitted)
			if !ok || trigger != domainwf.TriggerResubmit {
				t.Errorf("expected RESUBMIT trigger, got %s (ok=%v)", trigger, ok)
			}
		})
	}
}

func TestBuildPermitMachine_TerminalStatusesHaveNoEdges(t *testing.T) {
	m := BuildPermitMachine()

	for _, terminal := range []domainwf.Status{domainwf.StatusCompleted, domainwf.StatusRejected} {
		if targets := m.Targets(terminal); len(targets) != 0 {
			t.Errorf("terminal %s has outgoing edges %v", terminal, targets)
		}
	}
}

func TestBuildPermitMachine_SubmittedServesEveryResumeStage(t *testing.T) {
	m := BuildPermitMachine()

	// the resume resubmission policy can re-enter any of the four review stages
	resumeTargets := []domainwf.Status{
		domainwf.StatusJEReviewPending,
		domainwf.StatusAEReviewPending,
		domainwf.StatusEE1ReviewPending,
		domainwf.StatusCE1ReviewPending,
	}
	for _, target := range resumeTargets {
		if !m.IsLegal(domainwf.StatusSubmitted, target) {
			t.Errorf("SUBMITTED -> %s should be legal", target)
		}
	}
}

func TestBuildPermitMachine_NoStageSkipping(t *testing.T) {
	m := BuildPermitMachine()

	illegal := []struct{ from, to domainwf.Status }{
		{domainwf.StatusJEReviewPending, domainwf.StatusAEReviewPending},
		{domainwf.StatusJEApproved, domainwf.StatusEE1ReviewPending},
		{domainwf.StatusSubmitted, domainwf.StatusPaymentPending},
		{domainwf.StatusCE1Approved, domainwf.StatusClerkPending},
		{domainwf.StatusPaymentPending, domainwf.StatusClerkPending},
		{domainwf.StatusEE2SignPending, domainwf.StatusCertificateIssued},
	}

	for _, tt := range illegal {
		if m.IsLegal(tt.from, tt.to) {
			t.Errorf("%s -> %s should not be legal", tt.from, tt.to)
		}
	}
}
