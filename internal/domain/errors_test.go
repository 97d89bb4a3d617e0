package domain

import (
	"fmt"
	"testing"
)

func TestErrorCodeOfSentinel(t *testing.T) {
	if got := ErrorCodeOf(ErrMalformedResponse); got != CodeMalformedResponse {
		t.Errorf("ErrorCodeOf = %s, want %s", got, CodeMalformedResponse)
	}
}

func TestErrorCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("reasoning call: %w", ErrRateLimit)
	if got := ErrorCodeOf(err); got != CodeRateLimit {
		t.Errorf("ErrorCodeOf = %s, want %s", got, CodeRateLimit)
	}
}

func TestErrorCodeOfDomainError(t *testing.T) {
	err := NewDomainError("Executor.Execute", ErrAgentFailed, "agent search")
	if got := ErrorCodeOf(err); got != CodeAgentFailed {
		t.Errorf("ErrorCodeOf = %s, want %s", got, CodeAgentFailed)
	}
}

func TestErrorCodeOfUnknown(t *testing.T) {
	if got := ErrorCodeOf(fmt.Errorf("boom")); got != CodeUnknown {
		t.Errorf("ErrorCodeOf = %s, want %s", got, CodeUnknown)
	}
	if got := ErrorCodeOf(nil); got != CodeUnknown {
		t.Errorf("ErrorCodeOf(nil) = %s, want %s", got, CodeUnknown)
	}
}

func TestDomainErrorMessage(t *testing.T) {
	err := NewDomainError("Parser.Parse", ErrMalformedResponse, "missing tools element")
	want := "Parser.Parse: missing tools element: malformed model response"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDecisionIsDirect(t *testing.T) {
	cases := []struct {
		name  string
		tools []string
		want  bool
	}{
		{"empty", nil, true},
		{"sentinel only", []string{NoTool}, true},
		{"sentinel among tools", []string{"search", NoTool}, true},
		{"tools", []string{"search", "chart"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decision{Tools: tc.tools}
			if got := d.IsDirect(); got != tc.want {
				t.Errorf("IsDirect() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRunHooksValidate(t *testing.T) {
	hooks := RunHooks{}
	if err := hooks.Validate(); err == nil {
		t.Fatal("expected error for missing OnFinish")
	}

	hooks.OnFinish = func(*FinalResult) {}
	if err := hooks.Validate(); err == nil {
		t.Fatal("expected error for missing OnAgentFailed")
	}

	hooks.OnAgentFailed = func(string, string) {}
	if err := hooks.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
