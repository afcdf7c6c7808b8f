package classify

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

func TestClassify_ProviderStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{401, Critical},
		{403, Critical},
		{429, Critical},
		{500, Transient},
		{502, Transient},
		{503, Transient},
		{400, UserInput},
	}
	for _, tt := range tests {
		err := &provider.ProviderError{StatusCode: tt.status, Message: "x"}
		if got := Classify(err); got != tt.want {
			t.Errorf("Classify(status %d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestClassify_WrappedProviderError(t *testing.T) {
	inner := &provider.ProviderError{StatusCode: 401, Message: "nope"}
	err := fmt.Errorf("chat request: %w", inner)
	if got := Classify(err); got != Critical {
		t.Errorf("Classify(wrapped 401) = %q, want critical", got)
	}
}

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		msg  string
		want Category
	}{
		{"Invalid API Key provided", Critical},
		{"quota exceeded for project", Critical},
		{"rate limit reached", Critical},
		{"request authentication failed", Critical},
		{"context deadline exceeded", Transient},
		{"dial tcp: connection refused", Transient},
		{"upstream returned 503", Transient},
		{"service unavailable", Transient},
		{"invalid parameter: amount", UserInput},
		{"validation failed on field", UserInput},
		{"something strange happened", Recoverable},
	}
	for _, tt := range tests {
		if got := Classify(errors.New(tt.msg)); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != Recoverable {
		t.Errorf("Classify(nil) = %q, want recoverable", got)
	}
}

func TestUserMessage_NeverEmptyNeverRaw(t *testing.T) {
	for _, cat := range []Category{Critical, Transient, UserInput, Recoverable} {
		msg := UserMessage(cat)
		if msg == "" {
			t.Errorf("UserMessage(%q) is empty", cat)
		}
		if strings.Contains(strings.ToLower(msg), "error:") {
			t.Errorf("UserMessage(%q) leaks error detail: %q", cat, msg)
		}
	}
}
